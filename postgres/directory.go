package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantgate"
)

// Directory implements tenantgate.Directory on top of a pgx connection
// pool. Status-guarded writes use conditional UPDATEs so concurrent
// instances serialize through the database rather than through process
// memory.
type Directory struct {
	pool *pgxpool.Pool
}

var _ tenantgate.Directory = (*Directory)(nil)

// NewDirectory wraps an established connection pool.
func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

const tenantColumns = `id, slug, name, COALESCE(custom_domain, ''),
	domain_verification_status, ssl_status, domain_verified_at, created_at, updated_at`

func scanTenant(row pgx.Row) (*tenantgate.Tenant, error) {
	var t tenantgate.Tenant
	err := row.Scan(
		&t.ID, &t.Slug, &t.Name, &t.CustomDomain,
		&t.DomainStatus, &t.SSLStatus, &t.DomainVerifiedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenantgate.ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (d *Directory) FindBySlug(ctx context.Context, slug string) (*tenantgate.Tenant, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
	return scanTenant(row)
}

func (d *Directory) FindByVerifiedDomain(ctx context.Context, domain string) (*tenantgate.Tenant, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants
		 WHERE lower(custom_domain) = lower($1) AND domain_verification_status = 'verified'`, domain)
	return scanTenant(row)
}

func (d *Directory) FindByID(ctx context.Context, id uuid.UUID) (*tenantgate.Tenant, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

func (d *Directory) BeginVerification(ctx context.Context, id uuid.UUID, from []tenantgate.VerificationStatus) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	tag, err := d.pool.Exec(ctx,
		`UPDATE tenants
		 SET domain_verification_status = 'verifying', updated_at = now()
		 WHERE id = $1 AND domain_verification_status = ANY($2)`,
		id, statuses)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return d.conflictOrMissing(ctx, id)
	}
	return nil
}

func (d *Directory) MarkVerified(ctx context.Context, id uuid.UUID, domain string, verifiedAt time.Time) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE tenants
		 SET domain_verification_status = 'verified',
		     domain_verified_at = $2,
		     ssl_status = 'provisioning',
		     updated_at = now()
		 WHERE id = $1
		   AND domain_verification_status = 'verifying'
		   AND lower(custom_domain) = lower($3)`,
		id, verifiedAt, domain)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return d.conflictOrMissing(ctx, id)
	}
	return nil
}

func (d *Directory) MarkFailed(ctx context.Context, id uuid.UUID) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE tenants
		 SET domain_verification_status = 'failed', updated_at = now()
		 WHERE id = $1 AND domain_verification_status = 'verifying'`,
		id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return d.conflictOrMissing(ctx, id)
	}
	return nil
}

func (d *Directory) SetDomain(ctx context.Context, id uuid.UUID, domain *string) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE tenants
		 SET custom_domain = $2,
		     domain_verification_status = 'pending',
		     ssl_status = 'pending',
		     domain_verified_at = NULL,
		     updated_at = now()
		 WHERE id = $1`,
		id, domain)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return tenantgate.ErrTenantNotFound
	}
	return nil
}

func (d *Directory) AppendVerification(ctx context.Context, rec tenantgate.VerificationRecord) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO domain_verification_records
		 (id, tenant_id, domain, verification_type, expected_value, actual_value, status, error_message, checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.TenantID, rec.Domain, rec.VerificationType,
		rec.ExpectedValue, rec.ActualValue, rec.Status, rec.ErrorMessage, rec.CheckedAt)
	return err
}

func (d *Directory) ListVerifications(ctx context.Context, id uuid.UUID, limit int) ([]tenantgate.VerificationRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := d.pool.Query(ctx,
		`SELECT id, tenant_id, domain, verification_type, expected_value, actual_value, status, error_message, checked_at
		 FROM domain_verification_records
		 WHERE tenant_id = $1
		 ORDER BY checked_at DESC
		 LIMIT $2`,
		id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []tenantgate.VerificationRecord
	for rows.Next() {
		var rec tenantgate.VerificationRecord
		err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.Domain, &rec.VerificationType,
			&rec.ExpectedValue, &rec.ActualValue, &rec.Status, &rec.ErrorMessage, &rec.CheckedAt,
		)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (d *Directory) ReleaseStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := d.pool.Exec(ctx,
		`UPDATE tenants
		 SET domain_verification_status = 'pending', updated_at = now()
		 WHERE domain_verification_status = 'verifying' AND updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// defaultHistoryLimit caps unbounded audit reads.
const defaultHistoryLimit = 20

// conflictOrMissing distinguishes a lost status race from a tenant that
// does not exist, since both leave a guarded UPDATE with zero rows.
func (d *Directory) conflictOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return tenantgate.ErrTenantNotFound
	}
	return tenantgate.ErrStatusConflict
}

// mapUniqueViolation translates unique-constraint violations into the
// package sentinels the callers match on.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "tenants_custom_domain_key":
		return errors.Join(tenantgate.ErrDomainTaken, err)
	case "tenants_slug_key":
		return errors.Join(tenantgate.ErrSlugTaken, err)
	default:
		return err
	}
}
