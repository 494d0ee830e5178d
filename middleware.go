package tenantgate

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Middleware resolves the tenant once per request and attaches the result
// to the request context before any tenant-scoped handler runs. The hard
// not-found signal (unmatched tenant subdomain on an API path) is answered
// here with a 404; everything else passes through, with or without a
// tenant.
func (rs *Resolver) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, err := rs.Resolve(r)
			if err != nil {
				if errors.Is(err, ErrTenantNotFound) {
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusNotFound)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "tenant not found"})
					return
				}
				// Resolve only fails with the not-found signal; anything
				// else degrades inside Resolve. Fail open regardless.
			}
			if tc != nil {
				r = r.WithContext(WithTenant(r.Context(), tc))
			}
			next.ServeHTTP(w, r)
		})
	}
}
