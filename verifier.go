package tenantgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantgate/pkg/cache"
	"github.com/dmitrymomot/tenantgate/pkg/dnsverify"
	"github.com/dmitrymomot/tenantgate/pkg/hostname"
)

// VerificationResult is the synchronous outcome of one verification
// attempt, returned to the initiating caller. Message is remediation
// oriented: a missing record, a wrong target, and a transient DNS failure
// each get a distinct explanation.
type VerificationResult struct {
	Domain    string    `json:"domain"`
	URL       string    `json:"url,omitempty"`
	Verified  bool      `json:"verified"`
	Expected  string    `json:"expected_value"`
	Found     []string  `json:"found_values,omitempty"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checked_at"`
}

// Verifier runs the custom-domain verification workflow: one bounded DNS
// CNAME check per call, an audit record per attempt, and the status
// transitions of the domain lifecycle. Attempts, claims, and releases for
// the same tenant are serialized with a per-tenant lock; the directory's
// status- and domain-guarded writes cover concurrent callers from other
// instances.
type Verifier struct {
	dir        Directory
	classifier *hostname.Classifier
	cache      cache.Cache[*TenantContext]
	log        *slog.Logger
	locks      map[uuid.UUID]*sync.Mutex
	now        func() time.Time
	resolver   dnsverify.Resolver
	target     string
	dnsTimeout time.Duration
	stuckAfter time.Duration
	cacheTTL   time.Duration
	mu         sync.Mutex
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithDNSTimeout bounds each CNAME lookup, independent of the caller's
// HTTP deadline. Default 7s.
func WithDNSTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.dnsTimeout = d
		}
	}
}

// WithDNSResolver replaces the DNS resolver. Tests inject fixtures here.
func WithDNSResolver(r dnsverify.Resolver) VerifierOption {
	return func(v *Verifier) {
		if r != nil {
			v.resolver = r
		}
	}
}

// WithVerifierCache shares the resolver's domain cache so status
// transitions invalidate routing lookups immediately.
func WithVerifierCache(c cache.Cache[*TenantContext], ttl time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.cache = c
		if ttl > 0 {
			v.cacheTTL = ttl
		}
	}
}

// WithVerifierLogger sets the workflow logger.
func WithVerifierLogger(log *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if log != nil {
			v.log = log
		}
	}
}

// WithStuckAfter sets how long a tenant may sit in verifying before the
// sweep treats the attempt as crashed and resets it. Default 10m.
func WithStuckAfter(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.stuckAfter = d
		}
	}
}

// NewVerifier creates a Verifier. target is the CNAME verification target
// every custom domain must point at, e.g. "domains.platform.io".
func NewVerifier(dir Directory, classifier *hostname.Classifier, target string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		dir:        dir,
		classifier: classifier,
		target:     hostname.Normalize(target),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks:      make(map[uuid.UUID]*sync.Mutex),
		now:        time.Now,
		dnsTimeout: dnsverify.DefaultTimeout,
		stuckAfter: 10 * time.Minute,
		cacheTTL:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs one verification attempt for the tenant's custom domain.
//
// The attempt is terminal either way: the caller re-invokes to retry.
// DNS outcomes (match, mismatch, lookup failure) are reported through the
// result, not the error; the error covers preconditions (no domain,
// unknown tenant, attempt already running) and storage failures.
// Re-verifying a verified domain re-runs the check and can demote it to
// failed if DNS has drifted.
func (v *Verifier) Verify(ctx context.Context, tenantID uuid.UUID) (*VerificationResult, error) {
	unlock := v.lock(tenantID)
	defer unlock()

	t, err := v.dir.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t.CustomDomain == "" {
		return nil, ErrNoDomainConfigured
	}

	err = v.dir.BeginVerification(ctx, tenantID,
		[]VerificationStatus{VerificationPending, VerificationFailed, VerificationVerified})
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, ErrVerificationInProgress
		}
		return nil, err
	}

	// Re-read after the status write: a claim from another instance may
	// have swapped the domain between the read above and the transition,
	// and the DNS check must run against the current claim, never a stale
	// one.
	t, err = v.dir.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t.CustomDomain == "" {
		// Released mid-attempt; the sweep returns the row to pending.
		return nil, ErrNoDomainConfigured
	}
	domain := hostname.Normalize(t.CustomDomain)

	dnsCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.dnsTimeout)
	defer cancel()
	report, dnsErr := dnsverify.CheckCNAME(dnsCtx, domain, v.target,
		dnsverify.WithResolver(v.resolver), dnsverify.WithTimeout(v.dnsTimeout))

	checkedAt := v.now().UTC()
	rec := VerificationRecord{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Domain:           domain,
		VerificationType: VerificationTypeCNAME,
		ExpectedValue:    v.target,
		CheckedAt:        checkedAt,
	}
	result := &VerificationResult{
		Domain:    domain,
		Expected:  v.target,
		CheckedAt: checkedAt,
	}

	switch {
	case dnsErr != nil:
		rec.Status = RecordStatusFailed
		msg := dnsErr.Error()
		rec.ErrorMessage = &msg
		result.Message = dnsFailureMessage(dnsErr, domain, v.target)

	case report.Matched:
		rec.Status = RecordStatusSuccess
		found := strings.Join(report.Records, ",")
		rec.ActualValue = &found
		result.Verified = true
		result.Found = report.Records
		result.URL = "https://" + domain
		result.Message = fmt.Sprintf("%s is verified and now routes to your workspace", domain)

	default:
		rec.Status = RecordStatusFailed
		found := strings.Join(report.Records, ",")
		rec.ActualValue = &found
		result.Found = report.Records
		result.Message = fmt.Sprintf(
			"found CNAME %s instead of %s; update the record at your DNS provider and verify again",
			strings.Join(report.Records, ", "), v.target)
	}

	// At-least-once audit: retry a failed append once, then log and
	// continue to the status write so the tenant is never stranded in
	// verifying over an audit row.
	if err := v.dir.AppendVerification(ctx, rec); err != nil {
		if err := v.dir.AppendVerification(ctx, rec); err != nil {
			v.log.ErrorContext(ctx, "failed to append verification record",
				slog.String("tenant_id", tenantID.String()), slog.String("error", err.Error()))
		}
	}

	if result.Verified {
		err = v.dir.MarkVerified(ctx, tenantID, domain, checkedAt)
	} else {
		err = v.dir.MarkFailed(ctx, tenantID)
	}
	if err != nil {
		// Status may be left in verifying; the sweep recovers it.
		return nil, err
	}

	v.invalidate(ctx, domain)

	v.log.InfoContext(ctx, "domain verification attempt finished",
		slog.String("tenant_id", tenantID.String()),
		slog.String("domain", domain),
		slog.Bool("verified", result.Verified))
	return result, nil
}

// ClaimDomain validates and stores a new custom domain for the tenant,
// resetting the verification lifecycle to pending. The platform's own
// hostnames and apex subdomains are rejected outright.
func (v *Verifier) ClaimDomain(ctx context.Context, tenantID uuid.UUID, domain string) error {
	domain = hostname.Normalize(domain)
	if err := hostname.ValidateDomain(domain); err != nil {
		return err
	}
	if v.classifier.IsPlatformHost(domain) {
		return ErrDomainReserved
	}

	// Claims share the per-tenant lock with Verify so a claim cannot land
	// between an attempt's domain read and its status transitions.
	unlock := v.lock(tenantID)
	defer unlock()

	t, err := v.dir.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := v.dir.SetDomain(ctx, tenantID, &domain); err != nil {
		return err
	}

	if t.CustomDomain != "" {
		v.invalidate(ctx, hostname.Normalize(t.CustomDomain))
	}
	v.invalidate(ctx, domain)
	return nil
}

// ReleaseDomain removes the tenant's custom domain and resets the
// verification lifecycle.
func (v *Verifier) ReleaseDomain(ctx context.Context, tenantID uuid.UUID) error {
	unlock := v.lock(tenantID)
	defer unlock()

	t, err := v.dir.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if t.CustomDomain == "" {
		return nil
	}

	if err := v.dir.SetDomain(ctx, tenantID, nil); err != nil {
		return err
	}
	v.invalidate(ctx, hostname.Normalize(t.CustomDomain))
	return nil
}

// IsDomainAllowed reports whether domain is a currently verified custom
// domain of some tenant. The on-demand TLS issuer calls this before
// requesting a certificate for an arbitrary handshake hostname, so it must
// never approve platform hosts or unverified claims.
func (v *Verifier) IsDomainAllowed(ctx context.Context, domain string) bool {
	domain = hostname.Normalize(domain)
	if domain == "" || v.classifier.IsPlatformHost(domain) {
		return false
	}

	tc, err := lookupVerifiedDomain(ctx, v.dir, v.cache, v.cacheTTL, domain)
	if err != nil {
		if !errors.Is(err, ErrTenantNotFound) {
			v.log.WarnContext(ctx, "tls allow check degraded to deny",
				slog.String("domain", domain), slog.String("error", err.Error()))
		}
		return false
	}
	return tc != nil
}

// Status returns the tenant's current domain state with its recent
// verification history, newest first.
func (v *Verifier) Status(ctx context.Context, tenantID uuid.UUID, historyLimit int) (*Tenant, []VerificationRecord, error) {
	t, err := v.dir.FindByID(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	recs, err := v.dir.ListVerifications(ctx, tenantID, historyLimit)
	if err != nil {
		return nil, nil, err
	}
	return t, recs, nil
}

func (v *Verifier) invalidate(ctx context.Context, domain string) {
	if v.cache == nil || domain == "" {
		return
	}
	if err := v.cache.Delete(ctx, domainCacheKey(domain)); err != nil {
		v.log.WarnContext(ctx, "failed to invalidate domain cache",
			slog.String("domain", domain), slog.String("error", err.Error()))
	}
}

// lock serializes verification attempts per tenant within this process.
func (v *Verifier) lock(id uuid.UUID) func() {
	v.mu.Lock()
	m, ok := v.locks[id]
	if !ok {
		m = &sync.Mutex{}
		v.locks[id] = m
	}
	v.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// dnsFailureMessage picks the remediation message for a DNS failure:
// a missing record means the tenant has not added it yet, a timeout means
// try again later.
func dnsFailureMessage(err error, domain, target string) string {
	switch {
	case errors.Is(err, dnsverify.ErrNoRecords):
		return fmt.Sprintf("no CNAME record found for %s; add a CNAME record pointing %s to %s, then verify again", domain, domain, target)
	case errors.Is(err, dnsverify.ErrTimeout):
		return "DNS lookup timed out; records can take a while to propagate, try again in a few minutes"
	default:
		return "DNS lookup failed; try again later"
	}
}
