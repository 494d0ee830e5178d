package tenantgate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantgate/pkg/cache"
	"github.com/dmitrymomot/tenantgate/pkg/hostname"
)

// AddressSource extracts a candidate tenant slug from a request surface
// other than the hostname. Sources are pure and tried in order; an empty
// return means "this surface doesn't address a tenant".
type AddressSource func(r *http.Request) string

// PathParamSource addresses a tenant through a chi URL parameter,
// e.g. /tenants/{tenantSlug}/bookings.
func PathParamSource(name string) AddressSource {
	return func(r *http.Request) string {
		return chi.URLParam(r, name)
	}
}

// HeaderSource addresses a tenant through a request header, for
// server-to-server calls.
func HeaderSource(name string) AddressSource {
	return func(r *http.Request) string {
		return r.Header.Get(name)
	}
}

// Resolver determines which tenant owns a request. Stateless per request
// and safe for arbitrary concurrency; the only I/O is one directory point
// lookup, bounded by the request context plus a local timeout.
type Resolver struct {
	dir        Directory
	classifier *hostname.Classifier
	cache      cache.Cache[*TenantContext]
	log        *slog.Logger
	fallbacks  []AddressSource
	apiPrefix  string
	cacheTTL   time.Duration
	timeout    time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache routes verified-domain lookups through c with the given TTL.
// Negative lookups are never cached.
func WithCache(c cache.Cache[*TenantContext], ttl time.Duration) ResolverOption {
	return func(rs *Resolver) {
		rs.cache = c
		if ttl > 0 {
			rs.cacheTTL = ttl
		}
	}
}

// WithAPIPrefix sets the path prefix that marks API requests.
// Default "/api". An unmatched tenant subdomain fails hard under this
// prefix and falls through for page requests.
func WithAPIPrefix(prefix string) ResolverOption {
	return func(rs *Resolver) {
		if prefix != "" {
			rs.apiPrefix = prefix
		}
	}
}

// WithFallbackSources sets the ordered fallback addressing sources tried
// when hostname resolution yields no tenant.
func WithFallbackSources(sources ...AddressSource) ResolverOption {
	return func(rs *Resolver) {
		rs.fallbacks = sources
	}
}

// WithResolverLogger sets the logger for degraded-lookup warnings.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(rs *Resolver) {
		if log != nil {
			rs.log = log
		}
	}
}

// WithLookupTimeout bounds each directory lookup independently of the
// request deadline. Default 3s; on expiry resolution degrades to no tenant.
func WithLookupTimeout(d time.Duration) ResolverOption {
	return func(rs *Resolver) {
		if d > 0 {
			rs.timeout = d
		}
	}
}

// NewResolver creates a Resolver over the directory and classifier.
func NewResolver(dir Directory, classifier *hostname.Classifier, opts ...ResolverOption) *Resolver {
	rs := &Resolver{
		dir:        dir,
		classifier: classifier,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		apiPrefix:  "/api",
		cacheTTL:   30 * time.Second,
		timeout:    3 * time.Second,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Resolve determines the tenant for the request.
//
// Precedence: platform hosts and reserved subdomains resolve to no tenant
// without any lookup; tenant subdomains resolve by slug; opaque hostnames
// resolve by verified custom domain; then fallback sources run in order.
// An unmatched tenant subdomain under the API prefix returns
// ErrTenantNotFound (the caller asked for a tenant-scoped endpoint that
// does not exist); page requests fall through instead.
//
// Directory failures degrade to no tenant: (nil, nil).
func (rs *Resolver) Resolve(r *http.Request) (*TenantContext, error) {
	ctx := r.Context()
	host := hostname.FromRequest(r)
	cl := rs.classifier.Classify(host)

	switch cl.Kind {
	case hostname.KindMain, hostname.KindReserved:
		// Never resolved by hostname, even if a tenant could claim a
		// confusing slug or domain. Fallback sources still apply: API
		// requests on the platform host address tenants by path or header.

	case hostname.KindTenantSubdomain:
		if tc := rs.lookupBySlug(ctx, cl.Slug); tc != nil {
			return tc, nil
		}
		if rs.isAPIRequest(r) {
			return nil, ErrTenantNotFound
		}
		// Page request with an unknown slug: fall through permissively
		// rather than hard-failing. The custom-domain lookup cannot match
		// an apex subdomain in practice, but the asymmetry is deliberate.
		if tc := rs.lookupByDomain(ctx, host); tc != nil {
			return tc, nil
		}

	case hostname.KindCustomDomain:
		if tc := rs.lookupByDomain(ctx, host); tc != nil {
			return tc, nil
		}
	}

	for _, src := range rs.fallbacks {
		s := strings.ToLower(strings.TrimSpace(src(r)))
		if s == "" {
			continue
		}
		if tc := rs.lookupBySlug(ctx, s); tc != nil {
			return tc, nil
		}
	}

	return nil, nil
}

func (rs *Resolver) isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, rs.apiPrefix)
}

func (rs *Resolver) lookupBySlug(ctx context.Context, slug string) *TenantContext {
	ctx, cancel := context.WithTimeout(ctx, rs.timeout)
	defer cancel()

	t, err := rs.dir.FindBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, ErrTenantNotFound) {
			rs.log.WarnContext(ctx, "tenant lookup degraded to none",
				slog.String("slug", slug), slog.String("error", err.Error()))
		}
		return nil
	}
	return NewTenantContext(t)
}

func (rs *Resolver) lookupByDomain(ctx context.Context, domain string) *TenantContext {
	ctx, cancel := context.WithTimeout(ctx, rs.timeout)
	defer cancel()

	tc, err := lookupVerifiedDomain(ctx, rs.dir, rs.cache, rs.cacheTTL, domain)
	if err != nil {
		if !errors.Is(err, ErrTenantNotFound) {
			rs.log.WarnContext(ctx, "domain lookup degraded to none",
				slog.String("domain", domain), slog.String("error", err.Error()))
		}
		return nil
	}
	return tc
}

// lookupVerifiedDomain resolves a verified custom domain to its tenant,
// through the cache when one is configured. Only positive results are
// cached; misses and errors pass through uncached.
func lookupVerifiedDomain(ctx context.Context, dir Directory, c cache.Cache[*TenantContext], ttl time.Duration, domain string) (*TenantContext, error) {
	domain = hostname.Normalize(domain)
	if domain == "" {
		return nil, ErrTenantNotFound
	}

	load := func(ctx context.Context) (*TenantContext, error) {
		t, err := dir.FindByVerifiedDomain(ctx, domain)
		if err != nil {
			return nil, err
		}
		return NewTenantContext(t), nil
	}

	if c == nil {
		return load(ctx)
	}
	return cache.GetOrSet(ctx, c, domainCacheKey(domain), ttl, load)
}

func domainCacheKey(domain string) string {
	return "tenant:domain:" + domain
}
