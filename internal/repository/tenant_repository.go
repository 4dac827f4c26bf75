package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/unclebandit/lifecycle-messaging/internal/errors"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

// TenantRepositoryInterface is the read side of the tenant table used by the schedulers.
type TenantRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.Tenant, error)
	// ListEligibleForOnboardingDay returns non-privileged tenants whose signup age falls in
	// [day*24h, (day+1)*24h) as of now and who hold no ledger row for that day.
	ListEligibleForOnboardingDay(ctx context.Context, day int, now time.Time) ([]model.Tenant, error)
	// ListEligibleForRetention excludes privileged and suspended tenants, tenants with a sent
	// onboarding email after onboardingSince, and tenants with a sent retention email after retentionSince.
	ListEligibleForRetention(ctx context.Context, onboardingSince, retentionSince time.Time) ([]model.Tenant, error)
}

type TenantRepository struct {
	DB *sql.DB
}

const tenantColumns = `t.id, t.email, t.first_name, t.business_name, t.slug, t.role, t.suspended,
    t.processor_connected_at, t.charges_enabled, t.payouts_enabled, t.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.Email, &t.FirstName, &t.BusinessName, &t.Slug, &t.Role, &t.Suspended,
		&t.ProcessorConnectedAt, &t.ChargesEnabled, &t.PayoutsEnabled, &t.CreatedAt)
	return t, err
}

func (r *TenantRepository) GetByID(ctx context.Context, id int) (*model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants t WHERE t.id=$1`
	t, err := scanTenant(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewTenantNotFound(id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) ListEligibleForOnboardingDay(ctx context.Context, day int, now time.Time) ([]model.Tenant, error) {
	newest := now.Add(-time.Duration(day) * 24 * time.Hour)
	oldest := now.Add(-time.Duration(day+1) * 24 * time.Hour)
	query := `
        SELECT ` + tenantColumns + `
        FROM tenants t
        WHERE t.role <> $1
          AND t.created_at <= $2 AND t.created_at > $3
          AND NOT EXISTS (
              SELECT 1 FROM onboarding_send_records o
              WHERE o.tenant_id = t.id AND o.day = $4
          )
        ORDER BY t.id
    `
	return r.list(ctx, query, model.RoleAdmin, newest, oldest, day)
}

func (r *TenantRepository) ListEligibleForRetention(ctx context.Context, onboardingSince, retentionSince time.Time) ([]model.Tenant, error) {
	query := `
        SELECT ` + tenantColumns + `
        FROM tenants t
        WHERE t.role <> $1
          AND NOT t.suspended
          AND NOT EXISTS (
              SELECT 1 FROM onboarding_send_records o
              WHERE o.tenant_id = t.id AND o.status = $2 AND o.created_at > $3
          )
          AND NOT EXISTS (
              SELECT 1 FROM retention_send_records r
              WHERE r.tenant_id = t.id AND r.status = $2 AND r.created_at > $4
          )
        ORDER BY t.id
    `
	return r.list(ctx, query, model.RoleAdmin, model.SendStatusSent, onboardingSince, retentionSince)
}

func (r *TenantRepository) list(ctx context.Context, query string, args ...any) ([]model.Tenant, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []model.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

var _ TenantRepositoryInterface = (*TenantRepository)(nil)
