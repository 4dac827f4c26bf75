package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

// RetentionSendRepositoryInterface is the retention half of the send-record ledger.
type RetentionSendRepositoryInterface interface {
	Create(ctx context.Context, rec *model.RetentionSendRecord) error
	// MarkOpened and MarkClicked only record the first occurrence. They report
	// false when no record carries the tracking ID.
	MarkOpened(ctx context.Context, trackingID string, at time.Time) (bool, error)
	MarkClicked(ctx context.Context, trackingID string, at time.Time) (bool, error)
	Stats(ctx context.Context, now time.Time) (*model.RetentionStats, error)
}

type RetentionSendRepository struct {
	DB *sql.DB
}

func (r *RetentionSendRepository) Create(ctx context.Context, rec *model.RetentionSendRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO retention_send_records
        (tenant_id, template_id, tracking_id, segment, status, last_error, sent_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	return r.DB.QueryRowContext(ctx, query,
		rec.TenantID,
		rec.TemplateID,
		rec.TrackingID,
		string(rec.Segment),
		rec.Status,
		rec.LastError,
		rec.SentAt,
		rec.CreatedAt,
	).Scan(&rec.ID)
}

func (r *RetentionSendRepository) MarkOpened(ctx context.Context, trackingID string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE retention_send_records
        SET opened_at = COALESCE(opened_at, $1)
        WHERE tracking_id=$2`, at, trackingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkClicked also fills opened_at, since a click implies the message was opened.
func (r *RetentionSendRepository) MarkClicked(ctx context.Context, trackingID string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE retention_send_records
        SET clicked_at = COALESCE(clicked_at, $1),
            opened_at  = COALESCE(opened_at, $1)
        WHERE tracking_id=$2`, at, trackingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *RetentionSendRepository) Stats(ctx context.Context, now time.Time) (*model.RetentionStats, error) {
	stats := &model.RetentionStats{
		ByStatus:  map[string]int{model.SendStatusSent: 0, model.SendStatusFailed: 0},
		BySegment: map[model.Segment]model.SegmentStats{},
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM retention_send_records GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sentQuery := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE created_at > $2),
               COUNT(*) FILTER (WHERE created_at > $3),
               COUNT(*) FILTER (WHERE opened_at IS NOT NULL),
               COUNT(*) FILTER (WHERE clicked_at IS NOT NULL)
        FROM retention_send_records
        WHERE status = $1
    `
	err = r.DB.QueryRowContext(ctx, sentQuery, model.SendStatusSent,
		now.Add(-7*24*time.Hour), now.Add(-30*24*time.Hour),
	).Scan(&stats.Sent, &stats.SentLast7Days, &stats.SentLast30Days, &stats.Opened, &stats.Clicked)
	if err != nil {
		return nil, err
	}

	segmentQuery := `
        SELECT segment,
               COUNT(*) FILTER (WHERE status = $1),
               COUNT(*) FILTER (WHERE status = $2),
               COUNT(*) FILTER (WHERE opened_at IS NOT NULL),
               COUNT(*) FILTER (WHERE clicked_at IS NOT NULL)
        FROM retention_send_records
        GROUP BY segment
    `
	rows, err = r.DB.QueryContext(ctx, segmentQuery, model.SendStatusSent, model.SendStatusFailed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var segment string
		var s model.SegmentStats
		if err := rows.Scan(&segment, &s.Sent, &s.Failed, &s.Opened, &s.Clicked); err != nil {
			return nil, err
		}
		stats.BySegment[model.Segment(segment)] = s
	}
	return stats, rows.Err()
}

var _ RetentionSendRepositoryInterface = (*RetentionSendRepository)(nil)
