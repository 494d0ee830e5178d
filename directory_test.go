package tenantgate_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantgate"
)

// fakeDirectory is an in-memory Directory for tests. It mimics the store's
// contract: not-found sentinels, status-guarded writes, and verified-only
// domain matching.
type fakeDirectory struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*tenantgate.Tenant
	records []tenantgate.VerificationRecord

	// failure injection
	lookupErr      error
	appendErr      error
	appendFailures int
	appendCalls    int

	// call counters
	slugLookups   int
	domainLookups int
}

func newFakeDirectory(tenants ...*tenantgate.Tenant) *fakeDirectory {
	d := &fakeDirectory{tenants: make(map[uuid.UUID]*tenantgate.Tenant)}
	for _, t := range tenants {
		cp := *t
		d.tenants[t.ID] = &cp
	}
	return d
}

func (d *fakeDirectory) FindBySlug(_ context.Context, slug string) (*tenantgate.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slugLookups++
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	for _, t := range d.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenantgate.ErrTenantNotFound
}

func (d *fakeDirectory) FindByVerifiedDomain(_ context.Context, domain string) (*tenantgate.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.domainLookups++
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	for _, t := range d.tenants {
		if strings.EqualFold(t.CustomDomain, domain) && t.DomainStatus == tenantgate.VerificationVerified {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenantgate.ErrTenantNotFound
}

func (d *fakeDirectory) FindByID(_ context.Context, id uuid.UUID) (*tenantgate.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	t, ok := d.tenants[id]
	if !ok {
		return nil, tenantgate.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (d *fakeDirectory) BeginVerification(_ context.Context, id uuid.UUID, from []tenantgate.VerificationStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tenants[id]
	if !ok {
		return tenantgate.ErrTenantNotFound
	}
	for _, s := range from {
		if t.DomainStatus == s {
			t.DomainStatus = tenantgate.VerificationVerifying
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return tenantgate.ErrStatusConflict
}

func (d *fakeDirectory) MarkVerified(_ context.Context, id uuid.UUID, domain string, verifiedAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tenants[id]
	if !ok {
		return tenantgate.ErrTenantNotFound
	}
	if t.DomainStatus != tenantgate.VerificationVerifying || !strings.EqualFold(t.CustomDomain, domain) {
		return tenantgate.ErrStatusConflict
	}
	t.DomainStatus = tenantgate.VerificationVerified
	t.SSLStatus = tenantgate.SSLProvisioning
	t.DomainVerifiedAt = &verifiedAt
	t.UpdatedAt = time.Now()
	return nil
}

func (d *fakeDirectory) MarkFailed(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tenants[id]
	if !ok {
		return tenantgate.ErrTenantNotFound
	}
	if t.DomainStatus != tenantgate.VerificationVerifying {
		return tenantgate.ErrStatusConflict
	}
	t.DomainStatus = tenantgate.VerificationFailed
	t.UpdatedAt = time.Now()
	return nil
}

func (d *fakeDirectory) SetDomain(_ context.Context, id uuid.UUID, domain *string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tenants[id]
	if !ok {
		return tenantgate.ErrTenantNotFound
	}
	if domain != nil {
		for _, other := range d.tenants {
			if other.ID != id && strings.EqualFold(other.CustomDomain, *domain) {
				return tenantgate.ErrDomainTaken
			}
		}
		t.CustomDomain = *domain
	} else {
		t.CustomDomain = ""
	}
	t.DomainStatus = tenantgate.VerificationPending
	t.SSLStatus = tenantgate.SSLPending
	t.DomainVerifiedAt = nil
	t.UpdatedAt = time.Now()
	return nil
}

func (d *fakeDirectory) AppendVerification(_ context.Context, rec tenantgate.VerificationRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.appendCalls++
	if d.appendFailures > 0 {
		d.appendFailures--
		return d.appendErr
	}
	d.records = append(d.records, rec)
	return nil
}

func (d *fakeDirectory) ListVerifications(_ context.Context, id uuid.UUID, limit int) ([]tenantgate.VerificationRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []tenantgate.VerificationRecord
	for i := len(d.records) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if d.records[i].TenantID == id {
			out = append(out, d.records[i])
		}
	}
	return out, nil
}

func (d *fakeDirectory) ReleaseStuck(_ context.Context, cutoff time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for _, t := range d.tenants {
		if t.DomainStatus == tenantgate.VerificationVerifying && t.UpdatedAt.Before(cutoff) {
			t.DomainStatus = tenantgate.VerificationPending
			n++
		}
	}
	return n, nil
}

// tenant returns a snapshot of the stored tenant.
func (d *fakeDirectory) tenant(id uuid.UUID) tenantgate.Tenant {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.tenants[id]
}

// recordsFor returns audit records for a tenant in insertion order.
func (d *fakeDirectory) recordsFor(id uuid.UUID) []tenantgate.VerificationRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []tenantgate.VerificationRecord
	for _, r := range d.records {
		if r.TenantID == id {
			out = append(out, r)
		}
	}
	return out
}
