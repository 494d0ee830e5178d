package dnsverify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("dnsverify: empty domain or target")
	ErrNoRecords    = errors.New("dnsverify: no CNAME record found")
	ErrTimeout      = errors.New("dnsverify: dns lookup timed out")
	ErrLookupFailed = errors.New("dnsverify: dns lookup failed")
)

// DefaultTimeout bounds a single CNAME lookup independently of the caller's
// HTTP deadline.
const DefaultTimeout = 7 * time.Second

// Resolver is the subset of net.Resolver used for verification.
// Satisfied by *net.Resolver; swap in a fake for tests.
type Resolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
}

// Report is the outcome of a single CNAME check.
// Records holds the observed canonical names (normalized); Matched reports
// whether any of them points at the expected target.
type Report struct {
	Domain  string
	Target  string
	Records []string
	Matched bool
}

// Option configures a CNAME check.
type Option func(*options)

type options struct {
	resolver Resolver
	timeout  time.Duration
}

// WithResolver replaces the DNS resolver. Used by tests to inject fixtures.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithTimeout bounds the lookup duration. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// CheckCNAME looks up the CNAME record for domain and compares it against
// the expected target. A mismatch is not an error: the Report comes back
// with Matched=false and the observed records so callers can show the
// tenant what was found. Errors are reserved for DNS failures, classified
// into the package sentinels for caller-facing message selection.
func CheckCNAME(ctx context.Context, domain, target string, opts ...Option) (Report, error) {
	o := &options{resolver: net.DefaultResolver, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	domain = normalize(domain)
	target = normalize(target)
	report := Report{Domain: domain, Target: target}

	if domain == "" || target == "" {
		return report, ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cname, err := o.resolver.LookupCNAME(ctx, domain)
	if err != nil {
		return report, classify(err)
	}

	record := normalize(cname)
	// LookupCNAME echoes the queried name back when no CNAME record exists.
	if record == "" || record == domain {
		return report, ErrNoRecords
	}

	report.Records = []string{record}
	report.Matched = Matches(record, target)
	return report, nil
}

// Matches reports whether a CNAME record satisfies the expected target.
// Comparison is case-insensitive and trailing-dot tolerant; a record that is
// a sub-label of the target (edge.target) also matches to accommodate
// provider-managed prefixes.
func Matches(record, target string) bool {
	record = normalize(record)
	target = normalize(target)
	if record == "" || target == "" {
		return false
	}
	return record == target || strings.HasSuffix(record, "."+target)
}

func normalize(host string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
}

// classify maps DNS failures onto the package sentinels, keeping the raw
// error text attached for audit logging.
func classify(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return fmt.Errorf("%w: %s", ErrNoRecords, dnsErr.Err)
		case dnsErr.IsTimeout:
			return fmt.Errorf("%w: %s", ErrTimeout, dnsErr.Err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrLookupFailed, err)
}
