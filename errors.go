package tenantgate

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches the lookup key.
	ErrTenantNotFound = errors.New("tenantgate: tenant not found")

	// ErrNoDomainConfigured rejects verification for a tenant without a
	// custom domain.
	ErrNoDomainConfigured = errors.New("tenantgate: no custom domain configured")

	// ErrStatusConflict is returned by the directory when a status-guarded
	// write finds the tenant in an unexpected state.
	ErrStatusConflict = errors.New("tenantgate: domain status changed concurrently")

	// ErrVerificationInProgress is returned when another verification
	// attempt holds the tenant in the verifying state.
	ErrVerificationInProgress = errors.New("tenantgate: verification already in progress")

	// ErrDomainReserved rejects claiming the platform's own hostnames as
	// custom domains.
	ErrDomainReserved = errors.New("tenantgate: domain is reserved by the platform")

	// ErrDomainTaken is returned when another tenant already claimed the domain.
	ErrDomainTaken = errors.New("tenantgate: domain already claimed by another tenant")

	// ErrSlugTaken is returned when another tenant already uses the slug.
	ErrSlugTaken = errors.New("tenantgate: slug already in use")
)
