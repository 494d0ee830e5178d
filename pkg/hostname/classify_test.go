package hostname_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantgate/pkg/hostname"
	"github.com/dmitrymomot/tenantgate/pkg/slug"
)

func newClassifier() *hostname.Classifier {
	return hostname.NewClassifier(hostname.Config{ApexDomain: "platform.io"})
}

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	tests := []struct {
		name     string
		host     string
		wantKind hostname.Kind
		wantSlug string
	}{
		{"apex", "platform.io", hostname.KindMain, ""},
		{"www sibling", "www.platform.io", hostname.KindMain, ""},
		{"api sibling", "api.platform.io", hostname.KindMain, ""},
		{"app sibling", "app.platform.io", hostname.KindMain, ""},
		{"tenant subdomain", "acme.platform.io", hostname.KindTenantSubdomain, "acme"},
		{"tenant subdomain mixed case", "Acme.Platform.IO", hostname.KindTenantSubdomain, "acme"},
		{"tenant subdomain with port", "acme.platform.io:8080", hostname.KindTenantSubdomain, "acme"},
		{"reserved admin", "admin.platform.io", hostname.KindReserved, ""},
		{"reserved mail", "mail.platform.io", hostname.KindReserved, ""},
		{"localhost dev", "acme.localhost", hostname.KindTenantSubdomain, "acme"},
		{"lvh.me dev", "acme.lvh.me", hostname.KindTenantSubdomain, "acme"},
		{"local dev", "acme.local", hostname.KindTenantSubdomain, "acme"},
		{"multi-label subdomain", "a.b.platform.io", hostname.KindCustomDomain, ""},
		{"custom domain", "book.example.com", hostname.KindCustomDomain, ""},
		{"bare word", "intranet", hostname.KindCustomDomain, ""},
		{"empty", "", hostname.KindCustomDomain, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cl := c.Classify(tt.host)
			assert.Equal(t, tt.wantKind, cl.Kind)
			assert.Equal(t, tt.wantSlug, cl.Slug)
		})
	}
}

func TestClassifier_ClassifyIdempotent(t *testing.T) {
	t.Parallel()

	c := newClassifier()
	for _, host := range []string{"platform.io", "acme.platform.io", "admin.platform.io", "book.example.com"} {
		first := c.Classify(host)
		second := c.Classify(host)
		assert.Equal(t, first, second, "classify(%q) must be deterministic", host)
	}
}

func TestClassifier_CustomSets(t *testing.T) {
	t.Parallel()

	c := hostname.NewClassifier(hostname.Config{
		ApexDomain:         "platform.io",
		MainDomains:        []string{"platform.io", "marketing.site"},
		ReservedSubdomains: []string{"internal"},
		LocalSuffixes:      []string{"test"},
	})

	assert.Equal(t, hostname.KindMain, c.Classify("marketing.site").Kind)
	assert.Equal(t, hostname.KindReserved, c.Classify("internal.platform.io").Kind)
	// Custom reserved set replaces the defaults entirely.
	assert.Equal(t, hostname.KindTenantSubdomain, c.Classify("admin.platform.io").Kind)
	assert.Equal(t, hostname.KindTenantSubdomain, c.Classify("acme.test").Kind)
	// www.platform.io is no longer in the main set but matches the apex suffix.
	assert.Equal(t, hostname.KindTenantSubdomain, c.Classify("www.platform.io").Kind)
}

func TestClassifier_ValidateSlug(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	assert.NoError(t, c.ValidateSlug("my-guesthouse"))
	assert.ErrorIs(t, c.ValidateSlug("ab"), slug.ErrTooShort)
	assert.ErrorIs(t, c.ValidateSlug("-abc"), slug.ErrInvalidFormat)
	assert.ErrorIs(t, c.ValidateSlug("ABC"), slug.ErrInvalidFormat)
	assert.ErrorIs(t, c.ValidateSlug("admin"), hostname.ErrSlugReserved)
	assert.ErrorIs(t, c.ValidateSlug("www"), hostname.ErrSlugReserved)
}

func TestClassifier_IsPlatformHost(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	assert.True(t, c.IsPlatformHost("platform.io"))
	assert.True(t, c.IsPlatformHost("www.platform.io"))
	assert.True(t, c.IsPlatformHost("api.platform.io"))
	assert.True(t, c.IsPlatformHost("anything.platform.io"))
	assert.True(t, c.IsPlatformHost("deep.nested.platform.io"))
	assert.False(t, c.IsPlatformHost("book.example.com"))
	assert.False(t, c.IsPlatformHost("platform.io.evil.com"))
}
