package tenantgate

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Directory is the point-lookup interface over the tenant store.
//
// Lookups return ErrTenantNotFound when no tenant matches. Mutators touch
// only the domain verification fields; tenant lifecycle (create, delete,
// slug changes) belongs to the owning service. Slug and custom-domain
// uniqueness are enforced by the store at write time and surface as
// ErrSlugTaken / ErrDomainTaken.
type Directory interface {
	// FindBySlug resolves a tenant by its subdomain slug.
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// FindByVerifiedDomain resolves a tenant by custom domain, matching
	// only tenants whose domain verification status is verified.
	FindByVerifiedDomain(ctx context.Context, domain string) (*Tenant, error)

	// FindByID resolves a tenant by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// BeginVerification transitions the tenant into the verifying state,
	// guarded by the expected prior statuses: the write applies only if the
	// current status is one of from, otherwise ErrStatusConflict. This is
	// the cross-instance half of verification serialization.
	BeginVerification(ctx context.Context, id uuid.UUID, from []VerificationStatus) error

	// MarkVerified transitions verifying to verified, stamps the
	// verification time, and sets the SSL status to provisioning so the
	// certificate component starts issuance. The write applies only while
	// the stored custom domain still equals domain: a claim that landed
	// after the check must not inherit the verified status, so a changed
	// domain surfaces as ErrStatusConflict.
	MarkVerified(ctx context.Context, id uuid.UUID, domain string, verifiedAt time.Time) error

	// MarkFailed transitions verifying to failed.
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// SetDomain claims (non-nil) or releases (nil) the tenant's custom
	// domain. Any change resets the verification status to pending, the SSL
	// status to pending, and clears the verified-at stamp: a changed domain
	// is a new claim needing re-verification.
	SetDomain(ctx context.Context, id uuid.UUID, domain *string) error

	// AppendVerification appends one attempt to the audit trail.
	AppendVerification(ctx context.Context, rec VerificationRecord) error

	// ListVerifications returns the most recent attempts for a tenant,
	// newest first.
	ListVerifications(ctx context.Context, id uuid.UUID, limit int) ([]VerificationRecord, error)

	// ReleaseStuck resets tenants stuck in verifying since before cutoff
	// back to pending, returning how many were reset. Recovery for
	// crash-interrupted attempts.
	ReleaseStuck(ctx context.Context, cutoff time.Time) (int64, error)
}
