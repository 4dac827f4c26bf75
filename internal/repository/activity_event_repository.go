package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

// ActivityEventRepositoryInterface is append-only: there is no update or delete.
type ActivityEventRepositoryInterface interface {
	Insert(ctx context.Context, e *model.ActivityEvent) error
	// CountSince counts events at or after since; an empty types slice counts every type.
	CountSince(ctx context.Context, tenantID int, since time.Time, types ...model.EventType) (int, error)
	HasEventSince(ctx context.Context, tenantID int, eventType model.EventType, since time.Time) (bool, error)
	// LastOfType returns nil when the tenant never produced the event.
	LastOfType(ctx context.Context, tenantID int, eventType model.EventType) (*model.ActivityEvent, error)
}

type ActivityEventRepository struct {
	DB *sql.DB
}

func (r *ActivityEventRepository) Insert(ctx context.Context, e *model.ActivityEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	query := `
        INSERT INTO activity_events (tenant_id, event_type, payload, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.DB.QueryRowContext(ctx, query, e.TenantID, string(e.EventType), payload, e.CreatedAt).Scan(&e.ID)
}

func (r *ActivityEventRepository) CountSince(ctx context.Context, tenantID int, since time.Time, types ...model.EventType) (int, error) {
	query := `SELECT COUNT(*) FROM activity_events WHERE tenant_id=$1 AND created_at >= $2`
	args := []any{tenantID, since}
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		query += ` AND event_type = ANY($3)`
		args = append(args, pq.Array(names))
	}

	var count int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ActivityEventRepository) HasEventSince(ctx context.Context, tenantID int, eventType model.EventType, since time.Time) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM activity_events
            WHERE tenant_id=$1 AND event_type=$2 AND created_at >= $3
        )
    `
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, tenantID, string(eventType), since).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ActivityEventRepository) LastOfType(ctx context.Context, tenantID int, eventType model.EventType) (*model.ActivityEvent, error) {
	query := `
        SELECT id, tenant_id, event_type, payload, created_at
        FROM activity_events
        WHERE tenant_id=$1 AND event_type=$2
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	var (
		e       model.ActivityEvent
		typ     string
		payload []byte
	)
	err := r.DB.QueryRowContext(ctx, query, tenantID, string(eventType)).Scan(&e.ID, &e.TenantID, &typ, &payload, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.EventType = model.EventType(typ)
	e.Payload = payload
	return &e, nil
}

var _ ActivityEventRepositoryInterface = (*ActivityEventRepository)(nil)
