// Package hostname parses, normalizes, and classifies request hostnames for
// multi-tenant routing.
//
// Every inbound request carries a hostname that falls into one of four
// buckets: the platform's own hosts (marketing site, API, app), a reserved
// subdomain that no tenant may claim, a tenant subdomain under the platform
// apex, or an opaque hostname that may be a tenant's custom domain. The
// Classifier makes that call; it is a pure, total function that never fails.
//
// Basic usage:
//
//	c := hostname.NewClassifier(hostname.Config{
//		ApexDomain: "platform.io",
//	})
//
//	host := hostname.FromRequest(r)
//	switch cl := c.Classify(host); cl.Kind {
//	case hostname.KindTenantSubdomain:
//		// look up tenant by cl.Slug
//	case hostname.KindCustomDomain:
//		// look up tenant by cl.Domain (verified domains only)
//	}
//
// FromRequest prefers the X-Forwarded-Host header over the direct Host so
// the original hostname survives reverse proxies; chained proxies append
// hosts comma-separated and the first entry is the client-facing one.
//
// The package also provides syntactic hostname validation (ValidateDomain)
// used as a pre-flight check before a custom domain is claimed.
package hostname
