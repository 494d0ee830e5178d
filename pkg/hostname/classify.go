package hostname

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/tenantgate/pkg/slug"
)

// Kind is the classification of a request hostname.
type Kind int

const (
	// KindMain is one of the platform's own hosts; never resolves to a tenant.
	KindMain Kind = iota
	// KindReserved is a reserved subdomain of the apex; never resolves to a tenant.
	KindReserved
	// KindTenantSubdomain is a single-label subdomain of the apex carrying a
	// candidate tenant slug.
	KindTenantSubdomain
	// KindCustomDomain is any other hostname; a candidate custom domain.
	KindCustomDomain
)

func (k Kind) String() string {
	switch k {
	case KindMain:
		return "main"
	case KindReserved:
		return "reserved"
	case KindTenantSubdomain:
		return "tenant_subdomain"
	default:
		return "custom_domain"
	}
}

// Classification is the result of classifying a hostname.
// Slug is set only for KindTenantSubdomain; Domain always carries the
// normalized hostname.
type Classification struct {
	Domain string
	Slug   string
	Kind   Kind
}

// ErrSlugReserved is returned when a slug collides with a reserved subdomain.
var ErrSlugReserved = errors.New("hostname: slug is a reserved subdomain")

// DefaultReservedSubdomains are labels permanently excluded from tenant slug
// space because the platform uses them itself.
var DefaultReservedSubdomains = []string{
	"www", "api", "app", "admin", "mail", "smtp", "ftp",
	"blog", "dashboard", "status", "support", "docs", "help",
	"cdn", "assets", "static", "ns1", "ns2",
}

// DefaultLocalSuffixes are development suffixes treated like the apex so
// tenant subdomains work on a laptop (acme.localhost, acme.lvh.me).
var DefaultLocalSuffixes = []string{"localhost", "local", "lvh.me"}

// Config configures a Classifier.
type Config struct {
	// ApexDomain is the platform apex under which tenant subdomains live,
	// e.g. "platform.io". Required.
	ApexDomain string `env:"TENANT_APEX_DOMAIN,required"`

	// MainDomains are hostnames that must never resolve to a tenant.
	// Defaults to the apex and its www/api/app siblings.
	MainDomains []string `env:"TENANT_MAIN_DOMAINS" envSeparator:","`

	// ReservedSubdomains are labels excluded from tenant slug space.
	// Defaults to DefaultReservedSubdomains.
	ReservedSubdomains []string `env:"TENANT_RESERVED_SUBDOMAINS" envSeparator:","`

	// LocalSuffixes are development suffixes treated like the apex.
	// Defaults to DefaultLocalSuffixes.
	LocalSuffixes []string `env:"TENANT_LOCAL_SUFFIXES" envSeparator:","`
}

// Classifier classifies hostnames against the platform's domain sets.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	apex     string
	main     map[string]struct{}
	reserved map[string]struct{}
	suffixes []string
}

// NewClassifier builds a Classifier from cfg, applying defaults for any
// empty set.
func NewClassifier(cfg Config) *Classifier {
	apex := Normalize(cfg.ApexDomain)

	mains := cfg.MainDomains
	if len(mains) == 0 {
		mains = []string{apex, "www." + apex, "api." + apex, "app." + apex}
	}
	main := make(map[string]struct{}, len(mains))
	for _, d := range mains {
		main[Normalize(d)] = struct{}{}
	}

	reservedNames := cfg.ReservedSubdomains
	if len(reservedNames) == 0 {
		reservedNames = DefaultReservedSubdomains
	}
	reserved := make(map[string]struct{}, len(reservedNames))
	for _, n := range reservedNames {
		reserved[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	suffixes := cfg.LocalSuffixes
	if len(suffixes) == 0 {
		suffixes = DefaultLocalSuffixes
	}
	normalized := make([]string, 0, len(suffixes)+1)
	if apex != "" {
		normalized = append(normalized, apex)
	}
	for _, s := range suffixes {
		normalized = append(normalized, Normalize(s))
	}

	return &Classifier{
		apex:     apex,
		main:     main,
		reserved: reserved,
		suffixes: normalized,
	}
}

// Apex returns the configured platform apex domain.
func (c *Classifier) Apex() string {
	return c.apex
}

// Classify determines what kind of hostname this is. Pure and total: any
// input yields a result, unknown hosts come back as KindCustomDomain.
func (c *Classifier) Classify(host string) Classification {
	host = Normalize(host)
	cl := Classification{Domain: host}

	if _, ok := c.main[host]; ok {
		cl.Kind = KindMain
		return cl
	}

	for _, suffix := range c.suffixes {
		label, ok := strings.CutSuffix(host, "."+suffix)
		if !ok || label == "" {
			continue
		}
		if strings.Contains(label, ".") {
			// Multi-label subdomains are not tenant slugs; treat as an
			// opaque candidate domain, which can never match a verified
			// record because apex subdomains are rejected at claim time.
			cl.Kind = KindCustomDomain
			return cl
		}
		if _, res := c.reserved[label]; res {
			cl.Kind = KindReserved
			return cl
		}
		cl.Kind = KindTenantSubdomain
		cl.Slug = label
		return cl
	}

	cl.Kind = KindCustomDomain
	return cl
}

// IsReserved reports whether label is a reserved subdomain.
func (c *Classifier) IsReserved(label string) bool {
	_, ok := c.reserved[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

// ValidateSlug checks slug format and that the slug does not collide with a
// reserved subdomain. Consulted at slug-assignment time; request-time
// resolution applies the same reserved set via Classify.
func (c *Classifier) ValidateSlug(s string) error {
	if err := slug.Validate(s); err != nil {
		return err
	}
	if c.IsReserved(s) {
		return ErrSlugReserved
	}
	return nil
}

// IsPlatformHost reports whether domain is the apex itself, one of the main
// domains, or any subdomain of the apex. Such hostnames must be rejected as
// custom domains so a tenant cannot capture the platform's own hosts.
func (c *Classifier) IsPlatformHost(domain string) bool {
	domain = Normalize(domain)
	if _, ok := c.main[domain]; ok {
		return true
	}
	if domain == c.apex {
		return true
	}
	return c.apex != "" && strings.HasSuffix(domain, "."+c.apex)
}
