// Package hostrouter provides host-based HTTP routing for multi-tenant
// deployments serving several hostnames from one listener.
//
// Requests are dispatched by their effective hostname, honoring the
// X-Forwarded-Host header set by reverse proxies, with the port stripped
// and case folded. Two pattern types are supported:
//
//   - Exact: "api.example.com" matches only that host
//   - Wildcard: "*.example.com" matches any subdomain, but not the apex
//
// Exact matches take priority over wildcards. Hosts matching neither go
// to the fallback handler, which is where tenant custom domains land.
//
// # Usage
//
//	routes := hostrouter.Routes{
//	    "api.example.com": managementHandler,
//	    "*.example.com":   tenantHandler,
//	}
//	router := hostrouter.New(routes, tenantHandler)
//	http.ListenAndServe(":8080", router)
package hostrouter
