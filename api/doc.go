// Package api exposes the domain management HTTP surface: claiming and
// releasing custom domains, triggering CNAME verification, reading
// verification status and history, and the TLS on-demand authorization
// endpoint certificate issuers call before minting a certificate.
//
// Routes are mounted on a [github.com/go-chi/chi/v5] router:
//
//	POST   /tenants/{tenantID}/domain         claim a custom domain
//	DELETE /tenants/{tenantID}/domain         release the custom domain
//	GET    /tenants/{tenantID}/domain         status plus attempt history
//	POST   /tenants/{tenantID}/domain/verify  run a verification attempt
//	GET    /tls/allowed?domain=...            certificate issuance gate
//	GET    /healthz                           liveness and dependency health
//
// Errors are returned as JSON bodies with stable sentinel-derived status
// codes, so callers can branch without parsing messages.
package api
