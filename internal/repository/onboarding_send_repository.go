package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

// OnboardingSendRepositoryInterface is the onboarding half of the send-record ledger.
type OnboardingSendRepositoryInterface interface {
	Create(ctx context.Context, rec *model.OnboardingSendRecord) error
	Exists(ctx context.Context, tenantID, day int) (bool, error)
	HasTemplate(ctx context.Context, tenantID int, templateKey string) (bool, error)
	ListByTenant(ctx context.Context, tenantID int) ([]model.OnboardingSendRecord, error)
}

type OnboardingSendRepository struct {
	DB *sql.DB
}

func (r *OnboardingSendRepository) Create(ctx context.Context, rec *model.OnboardingSendRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO onboarding_send_records
        (tenant_id, day, status, template_key, processor_connected, last_error, forced, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	return r.DB.QueryRowContext(ctx, query,
		rec.TenantID,
		rec.Day,
		rec.Status,
		rec.TemplateKey,
		rec.ProcessorConnected,
		rec.LastError,
		rec.Forced,
		rec.CreatedAt,
	).Scan(&rec.ID)
}

func (r *OnboardingSendRepository) Exists(ctx context.Context, tenantID, day int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM onboarding_send_records WHERE tenant_id=$1 AND day=$2)`,
		tenantID, day).Scan(&exists)
	return exists, err
}

func (r *OnboardingSendRepository) HasTemplate(ctx context.Context, tenantID int, templateKey string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM onboarding_send_records WHERE tenant_id=$1 AND template_key=$2)`,
		tenantID, templateKey).Scan(&exists)
	return exists, err
}

func (r *OnboardingSendRepository) ListByTenant(ctx context.Context, tenantID int) ([]model.OnboardingSendRecord, error) {
	query := `
        SELECT id, tenant_id, day, status, template_key, processor_connected, last_error, forced, created_at
        FROM onboarding_send_records
        WHERE tenant_id=$1
        ORDER BY created_at, id
    `
	rows, err := r.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.OnboardingSendRecord{}
	for rows.Next() {
		var rec model.OnboardingSendRecord
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Day, &rec.Status, &rec.TemplateKey,
			&rec.ProcessorConnected, &rec.LastError, &rec.Forced, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ OnboardingSendRepositoryInterface = (*OnboardingSendRepository)(nil)
