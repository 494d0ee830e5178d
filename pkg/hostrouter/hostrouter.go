package hostrouter

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/tenantgate/pkg/hostname"
)

// Routes maps host patterns to HTTP handlers.
// Exact: "api.example.com"
// Wildcard: "*.example.com"
type Routes map[string]http.Handler

// Router dispatches requests by effective hostname. Behind a reverse
// proxy the forwarded host is used, so routing decisions match what the
// client actually asked for, not the proxy's upstream address.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler
	fallback http.Handler
}

// New creates a host router from the given routes. The fallback handler
// serves requests matching no pattern; in a multi-tenant deployment that
// is where custom domains land, since they arrive with hostnames the
// platform cannot enumerate up front.
func New(routes Routes, fallback http.Handler) *Router {
	r := &Router{
		exact:    make(map[string]http.Handler),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}

	for pattern, handler := range routes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if after, ok := strings.CutPrefix(pattern, "*."); ok {
			// "*.example.com" stored as "example.com"
			r.wildcard[after] = handler
		} else {
			r.exact[pattern] = handler
		}
	}

	return r
}

// ServeHTTP routes by the normalized request hostname. Exact matches win
// over wildcards; unmatched hosts go to the fallback.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	host := hostname.FromRequest(req)

	if h, ok := r.exact[host]; ok {
		h.ServeHTTP(w, req)
		return
	}

	// *.example.com matches foo.example.com but not example.com itself.
	if _, domain, ok := strings.Cut(host, "."); ok {
		if h, ok := r.wildcard[domain]; ok {
			h.ServeHTTP(w, req)
			return
		}
	}

	r.fallback.ServeHTTP(w, req)
}
