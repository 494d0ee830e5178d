package hostname

import (
	"net/http"
	"strings"
)

// ForwardedHostHeader is the header consulted before the direct Host.
const ForwardedHostHeader = "X-Forwarded-Host"

// FromRequest extracts the effective hostname from the request.
// A forwarded host set by a reverse proxy takes precedence over the direct
// Host; chained proxies append comma-separated values and the first one is
// the client-facing hostname. The result is normalized and may be empty.
func FromRequest(r *http.Request) string {
	host := r.Header.Get(ForwardedHostHeader)
	if host != "" {
		if first, _, ok := strings.Cut(host, ","); ok {
			host = first
		}
	} else {
		host = r.Host
	}
	return Normalize(host)
}

// Normalize strips the port and a trailing dot, trims whitespace, and
// lowercases the hostname. Best-effort: malformed input comes back as-is
// (lowercased) and simply fails later classification or lookup.
func Normalize(host string) string {
	host = strings.TrimSpace(host)

	// Strip :port, leaving IPv6 literals like [::1] intact.
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		if !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
	}

	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}
