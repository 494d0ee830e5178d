package hostname_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantgate/pkg/hostname"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "example.com", "example.com"},
		{"uppercase", "Example.COM", "example.com"},
		{"with port", "example.com:8080", "example.com"},
		{"trailing dot", "example.com.", "example.com"},
		{"dot and port", "Example.com.:443", "example.com"},
		{"whitespace", "  example.com ", "example.com"},
		{"ipv6 with port", "[::1]:8080", "[::1]"},
		{"ipv6 bare", "[::1]", "[::1]"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, hostname.Normalize(tt.in))
		})
	}
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("direct host", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		r.Host = "Acme.Platform.io:443"
		assert.Equal(t, "acme.platform.io", hostname.FromRequest(r))
	})

	t.Run("forwarded host wins", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		r.Host = "internal.lb.local"
		r.Header.Set("X-Forwarded-Host", "book.example.com")
		assert.Equal(t, "book.example.com", hostname.FromRequest(r))
	})

	t.Run("forwarded chain takes first", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		r.Host = "internal.lb.local"
		r.Header.Set("X-Forwarded-Host", "book.example.com, proxy1.cdn.net, proxy2.cdn.net")
		assert.Equal(t, "book.example.com", hostname.FromRequest(r))
	})

	t.Run("forwarded host with port", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-Host", "Book.Example.COM:8443")
		assert.Equal(t, "book.example.com", hostname.FromRequest(r))
	})
}
