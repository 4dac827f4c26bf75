package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/lifecycle-messaging/internal/errors"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

// TemplateFilter narrows ListTemplates. Zero values mean "any".
type TemplateFilter struct {
	Segment string
	Active  *bool
}

type RetentionTemplateRepositoryInterface interface {
	Create(ctx context.Context, t *model.RetentionTemplate) error
	Update(ctx context.Context, t *model.RetentionTemplate) error
	GetByID(ctx context.Context, id int) (*model.RetentionTemplate, error)
	ListTemplates(ctx context.Context, offset, limit int, filter TemplateFilter) ([]*model.RetentionTemplate, int, error)
	// GetActiveForSegment returns the active template with the highest priority,
	// or nil when the segment has none.
	GetActiveForSegment(ctx context.Context, segment model.Segment) (*model.RetentionTemplate, error)
}

type RetentionTemplateRepository struct {
	DB *sql.DB
}

const templateColumns = `id, name, segment, priority, active, subject, body_html, body_text,
    cta_label, cta_route, created_at, updated_at`

func scanTemplate(row rowScanner) (*model.RetentionTemplate, error) {
	var t model.RetentionTemplate
	var segment string
	err := row.Scan(&t.ID, &t.Name, &segment, &t.Priority, &t.Active, &t.Subject, &t.BodyHTML, &t.BodyText,
		&t.CTALabel, &t.CTARoute, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Segment = model.Segment(segment)
	return &t, nil
}

func (r *RetentionTemplateRepository) Create(ctx context.Context, t *model.RetentionTemplate) error {
	t.CreatedAt = time.Now()
	query := `
        INSERT INTO retention_templates
        (name, segment, priority, active, subject, body_html, body_text, cta_label, cta_route, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
	return r.DB.QueryRowContext(ctx, query, t.Name, string(t.Segment), t.Priority, t.Active, t.Subject,
		t.BodyHTML, t.BodyText, t.CTALabel, t.CTARoute, t.CreatedAt).Scan(&t.ID)
}

func (r *RetentionTemplateRepository) Update(ctx context.Context, t *model.RetentionTemplate) error {
	now := time.Now()
	query := `
        UPDATE retention_templates
        SET name=$1, segment=$2, priority=$3, active=$4, subject=$5, body_html=$6, body_text=$7,
            cta_label=$8, cta_route=$9, updated_at=$10
        WHERE id=$11
    `
	res, err := r.DB.ExecContext(ctx, query, t.Name, string(t.Segment), t.Priority, t.Active, t.Subject,
		t.BodyHTML, t.BodyText, t.CTALabel, t.CTARoute, now, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewTemplateNotFound(t.ID)
	}
	t.UpdatedAt = &now
	return nil
}

func (r *RetentionTemplateRepository) GetByID(ctx context.Context, id int) (*model.RetentionTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM retention_templates WHERE id=$1`
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewTemplateNotFound(id)
		}
		return nil, err
	}
	return t, nil
}

func (r *RetentionTemplateRepository) ListTemplates(ctx context.Context, offset, limit int, filter TemplateFilter) ([]*model.RetentionTemplate, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.Segment != "" {
		where += fmt.Sprintf(" AND segment=$%d", argPos)
		args = append(args, filter.Segment)
		argPos++
	}
	if filter.Active != nil {
		where += fmt.Sprintf(" AND active=$%d", argPos)
		args = append(args, *filter.Active)
		argPos++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM retention_templates`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + templateColumns + ` FROM retention_templates` + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	templates := []*model.RetentionTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, t)
	}
	return templates, total, rows.Err()
}

func (r *RetentionTemplateRepository) GetActiveForSegment(ctx context.Context, segment model.Segment) (*model.RetentionTemplate, error) {
	query := `SELECT ` + templateColumns + `
        FROM retention_templates
        WHERE segment=$1 AND active
        ORDER BY priority DESC, id DESC
        LIMIT 1`
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, string(segment)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

var _ RetentionTemplateRepositoryInterface = (*RetentionTemplateRepository)(nil)
