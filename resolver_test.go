package tenantgate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantgate"
	"github.com/dmitrymomot/tenantgate/pkg/cache"
	"github.com/dmitrymomot/tenantgate/pkg/hostname"
)

func testClassifier() *hostname.Classifier {
	return hostname.NewClassifier(hostname.Config{ApexDomain: "platform.io"})
}

func acmeTenant() *tenantgate.Tenant {
	return &tenantgate.Tenant{
		ID:           uuid.New(),
		Slug:         "acme",
		Name:         "Acme Guesthouse",
		DomainStatus: tenantgate.VerificationPending,
		SSLStatus:    tenantgate.SSLPending,
	}
}

func verifiedTenant(domain string) *tenantgate.Tenant {
	now := time.Now()
	return &tenantgate.Tenant{
		ID:               uuid.New(),
		Slug:             "booker",
		Name:             "Booker",
		CustomDomain:     domain,
		DomainStatus:     tenantgate.VerificationVerified,
		SSLStatus:        tenantgate.SSLActive,
		DomainVerifiedAt: &now,
	}
}

func requestForHost(host, path string) *http.Request {
	r := httptest.NewRequest("GET", path, nil)
	r.Host = host
	return r
}

func TestResolver_MainDomainNeverResolves(t *testing.T) {
	t.Parallel()

	// Even a tenant that somehow stored the apex as a verified domain must
	// not capture the platform's own hosts.
	shadow := verifiedTenant("platform.io")
	dir := newFakeDirectory(shadow)
	rs := tenantgate.NewResolver(dir, testClassifier())

	for _, host := range []string{"platform.io", "www.platform.io", "api.platform.io", "app.platform.io"} {
		tc, err := rs.Resolve(requestForHost(host, "/"))
		require.NoError(t, err)
		assert.Nil(t, tc, "host %s must not resolve", host)
	}
	assert.Zero(t, dir.domainLookups, "main domains must short-circuit without lookups")
	assert.Zero(t, dir.slugLookups)
}

func TestResolver_ReservedSubdomainNeverResolves(t *testing.T) {
	t.Parallel()

	admin := acmeTenant()
	admin.Slug = "admin" // directly seeded; claim-time validation would reject this
	dir := newFakeDirectory(admin)
	rs := tenantgate.NewResolver(dir, testClassifier())

	tc, err := rs.Resolve(requestForHost("admin.platform.io", "/"))
	require.NoError(t, err)
	assert.Nil(t, tc)
	assert.Zero(t, dir.slugLookups, "reserved names are excluded without lookup")
}

func TestResolver_TenantSubdomain(t *testing.T) {
	t.Parallel()

	acme := acmeTenant()
	dir := newFakeDirectory(acme)
	rs := tenantgate.NewResolver(dir, testClassifier())

	tc, err := rs.Resolve(requestForHost("acme.platform.io", "/"))
	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Equal(t, acme.ID, tc.ID)
	assert.Equal(t, "acme", tc.Slug)
	assert.Equal(t, "Acme Guesthouse", tc.Name)
}

func TestResolver_UnknownSubdomainAsymmetry(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	rs := tenantgate.NewResolver(dir, testClassifier())

	t.Run("api path fails hard", func(t *testing.T) {
		tc, err := rs.Resolve(requestForHost("ghost.platform.io", "/api/bookings"))
		assert.ErrorIs(t, err, tenantgate.ErrTenantNotFound)
		assert.Nil(t, tc)
	})

	t.Run("page path falls through", func(t *testing.T) {
		tc, err := rs.Resolve(requestForHost("ghost.platform.io", "/"))
		assert.NoError(t, err)
		assert.Nil(t, tc)
	})
}

func TestResolver_CustomDomain(t *testing.T) {
	t.Parallel()

	t.Run("verified resolves", func(t *testing.T) {
		t.Parallel()
		owner := verifiedTenant("book.example.com")
		dir := newFakeDirectory(owner)
		rs := tenantgate.NewResolver(dir, testClassifier())

		tc, err := rs.Resolve(requestForHost("book.example.com", "/"))
		require.NoError(t, err)
		require.NotNil(t, tc)
		assert.Equal(t, owner.ID, tc.ID)
		assert.Equal(t, "book.example.com", tc.CustomDomain)
	})

	t.Run("unverified never resolves", func(t *testing.T) {
		t.Parallel()
		for _, status := range []tenantgate.VerificationStatus{
			tenantgate.VerificationPending,
			tenantgate.VerificationVerifying,
			tenantgate.VerificationFailed,
		} {
			claimed := acmeTenant()
			claimed.CustomDomain = "book.example.com"
			claimed.DomainStatus = status
			dir := newFakeDirectory(claimed)
			rs := tenantgate.NewResolver(dir, testClassifier())

			tc, err := rs.Resolve(requestForHost("book.example.com", "/"))
			require.NoError(t, err)
			assert.Nil(t, tc, "status %s must not route", status)
		}
	})
}

func TestResolver_DirectoryErrorDegradesToNone(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory(verifiedTenant("book.example.com"))
	dir.lookupErr = assert.AnError
	rs := tenantgate.NewResolver(dir, testClassifier())

	tc, err := rs.Resolve(requestForHost("book.example.com", "/"))
	assert.NoError(t, err, "datastore failures never abort the request")
	assert.Nil(t, tc)

	tc, err = rs.Resolve(requestForHost("acme.platform.io", "/"))
	assert.NoError(t, err)
	assert.Nil(t, tc)
}

func TestResolver_FallbackSources(t *testing.T) {
	t.Parallel()

	acme := acmeTenant()

	t.Run("header addresses tenant on platform host", func(t *testing.T) {
		t.Parallel()
		dir := newFakeDirectory(acme)
		rs := tenantgate.NewResolver(dir, testClassifier(),
			tenantgate.WithFallbackSources(tenantgate.HeaderSource("X-Tenant-Slug")))

		r := requestForHost("api.platform.io", "/api/bookings")
		r.Header.Set("X-Tenant-Slug", "acme")

		tc, err := rs.Resolve(r)
		require.NoError(t, err)
		require.NotNil(t, tc)
		assert.Equal(t, acme.ID, tc.ID)
	})

	t.Run("path param addresses tenant", func(t *testing.T) {
		t.Parallel()
		dir := newFakeDirectory(acme)
		rs := tenantgate.NewResolver(dir, testClassifier(),
			tenantgate.WithFallbackSources(tenantgate.PathParamSource("tenantSlug")))

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("tenantSlug", "acme")
		r := requestForHost("api.platform.io", "/api/tenants/acme/bookings")
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

		tc, err := rs.Resolve(r)
		require.NoError(t, err)
		require.NotNil(t, tc)
		assert.Equal(t, acme.ID, tc.ID)
	})

	t.Run("hostname wins over fallback", func(t *testing.T) {
		t.Parallel()
		other := acmeTenant()
		other.Slug = "other"
		dir := newFakeDirectory(acme, other)
		rs := tenantgate.NewResolver(dir, testClassifier(),
			tenantgate.WithFallbackSources(tenantgate.HeaderSource("X-Tenant-Slug")))

		r := requestForHost("acme.platform.io", "/")
		r.Header.Set("X-Tenant-Slug", "other")

		tc, err := rs.Resolve(r)
		require.NoError(t, err)
		require.NotNil(t, tc)
		assert.Equal(t, "acme", tc.Slug, "hostname resolution takes precedence")
	})
}

func TestResolver_Idempotent(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory(acmeTenant())
	rs := tenantgate.NewResolver(dir, testClassifier())

	first, err1 := rs.Resolve(requestForHost("acme.platform.io", "/"))
	second, err2 := rs.Resolve(requestForHost("acme.platform.io", "/"))
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestResolver_CachesVerifiedDomainLookups(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[*tenantgate.TenantContext](cache.WithCleanupInterval(0))
	defer c.Close()

	dir := newFakeDirectory(verifiedTenant("cached.example.com"))
	rs := tenantgate.NewResolver(dir, testClassifier(), tenantgate.WithCache(c, time.Minute))

	for i := 0; i < 3; i++ {
		tc, err := rs.Resolve(requestForHost("cached.example.com", "/"))
		require.NoError(t, err)
		require.NotNil(t, tc)
	}
	assert.Equal(t, 1, dir.domainLookups, "repeat lookups must be served from cache")
}

func TestResolver_NegativeLookupsNotCached(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[*tenantgate.TenantContext](cache.WithCleanupInterval(0))
	defer c.Close()

	dir := newFakeDirectory()
	rs := tenantgate.NewResolver(dir, testClassifier(), tenantgate.WithCache(c, time.Minute))

	for i := 0; i < 2; i++ {
		tc, err := rs.Resolve(requestForHost("missing.example.com", "/"))
		require.NoError(t, err)
		assert.Nil(t, tc)
	}
	assert.Equal(t, 2, dir.domainLookups, "misses must not be cached")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	acme := acmeTenant()
	dir := newFakeDirectory(acme)
	rs := tenantgate.NewResolver(dir, testClassifier())

	var seen *tenantgate.TenantContext
	handler := rs.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = tenantgate.TenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("attaches tenant", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestForHost("acme.platform.io", "/"))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, acme.ID, seen.ID)
	})

	t.Run("no tenant passes through", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestForHost("platform.io", "/"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("api miss responds 404", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestForHost("ghost.platform.io", "/api/bookings"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"tenant not found"}`, rec.Body.String())
	})
}
