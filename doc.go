// Package tenantgate resolves which tenant owns an inbound request's
// hostname and runs the workflow that promotes a tenant's custom domain
// from claimed to routable.
//
// # Resolution
//
// Every request passes through the Resolver middleware before any
// tenant-scoped handler runs. The hostname is parsed (forwarded host over
// direct host), classified against the platform's domain sets, and matched
// to a tenant with a fixed precedence: platform hosts and reserved
// subdomains never resolve, tenant subdomains resolve by slug, and opaque
// hostnames resolve by custom domain only once that domain is verified.
// Requests can also address a tenant through a path parameter or header;
// these fallback sources run in order after hostname resolution and never
// override a hostname match.
//
//	resolver := tenantgate.NewResolver(dir, classifier,
//		tenantgate.WithCache(c, 30*time.Second),
//		tenantgate.WithFallbackSources(
//			tenantgate.PathParamSource("tenantSlug"),
//			tenantgate.HeaderSource("X-Tenant-Slug"),
//		),
//	)
//	r.Use(resolver.Middleware())
//
// Handlers read the result with TenantFromContext. Resolution fails open:
// datastore errors degrade to "no tenant" rather than failing the request.
//
// # Verification
//
// A tenant claims a custom domain, points it at the platform's CNAME
// target, and triggers verification. The Verifier runs one bounded DNS
// check per call, appends an audit record for every attempt, and moves the
// tenant through pending, verifying, verified or failed. Attempts for the
// same tenant are serialized with a per-tenant lock in-process and a
// status-guarded write in the directory, so concurrent attempts cannot
// interleave. Verified domains become eligible for routing and flip SSL
// provisioning on; re-verification can demote a drifted domain back to
// failed.
package tenantgate
