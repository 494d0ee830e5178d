package tenantgate

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the lifecycle state of a tenant's custom domain.
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationVerifying VerificationStatus = "verifying"
	VerificationVerified  VerificationStatus = "verified"
	VerificationFailed    VerificationStatus = "failed"
)

// SSLStatus tracks certificate issuance for a custom domain. Owned by the
// external TLS component; this subsystem only flips it to provisioning when
// a domain verifies and back to pending when the domain changes.
type SSLStatus string

const (
	SSLPending      SSLStatus = "pending"
	SSLProvisioning SSLStatus = "provisioning"
	SSLActive       SSLStatus = "active"
	SSLExpired      SSLStatus = "expired"
	SSLFailed       SSLStatus = "failed"
)

// Tenant is the unit of isolation. The record is owned by the directory;
// this subsystem reads it for resolution and writes only the domain
// verification fields.
type Tenant struct {
	ID               uuid.UUID          `json:"id"`
	Slug             string             `json:"slug,omitempty"`
	Name             string             `json:"name"`
	CustomDomain     string             `json:"custom_domain,omitempty"`
	DomainStatus     VerificationStatus `json:"domain_verification_status"`
	SSLStatus        SSLStatus          `json:"ssl_status"`
	DomainVerifiedAt *time.Time         `json:"domain_verified_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// HasVerifiedDomain reports whether the tenant's custom domain is eligible
// to resolve traffic. A claimed but unverified domain never routes.
func (t *Tenant) HasVerifiedDomain() bool {
	return t.CustomDomain != "" && t.DomainStatus == VerificationVerified
}

// VerificationType names the proof mechanism of an attempt.
const VerificationTypeCNAME = "cname"

// Audit record outcomes.
const (
	RecordStatusSuccess = "success"
	RecordStatusFailed  = "failed"
)

// VerificationRecord is one row of the append-only audit trail: a single
// verification attempt with what was expected and what DNS returned.
// Records are never mutated or deleted.
type VerificationRecord struct {
	ID               uuid.UUID `json:"id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	Domain           string    `json:"domain"`
	VerificationType string    `json:"verification_type"`
	ExpectedValue    string    `json:"expected_value"`
	ActualValue      *string   `json:"actual_value,omitempty"`
	Status           string    `json:"status"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	CheckedAt        time.Time `json:"checked_at"`
}

// TenantContext is the resolved identity attached to a request once its
// owning tenant is determined.
type TenantContext struct {
	ID           uuid.UUID          `json:"id"`
	Slug         string             `json:"slug,omitempty"`
	CustomDomain string             `json:"custom_domain,omitempty"`
	Name         string             `json:"name"`
	DomainStatus VerificationStatus `json:"domain_verification_status"`
}

// NewTenantContext projects a tenant record into its request context form.
func NewTenantContext(t *Tenant) *TenantContext {
	if t == nil {
		return nil
	}
	return &TenantContext{
		ID:           t.ID,
		Slug:         t.Slug,
		CustomDomain: t.CustomDomain,
		Name:         t.Name,
		DomainStatus: t.DomainStatus,
	}
}
