package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/unclebandit/lifecycle-messaging/internal/catalog"
	appErrors "github.com/unclebandit/lifecycle-messaging/internal/errors"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/render"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
)

// RetentionTemplateService is the operator surface over retention copy.
type RetentionTemplateService struct {
	TemplateRepo repository.RetentionTemplateRepositoryInterface
	TenantRepo   repository.TenantRepositoryInterface
	BaseURL      string
}

// PreviewResult is a rendered template for one tenant, before tracking is applied.
type PreviewResult struct {
	TemplateID int    `json:"template_id"`
	TenantID   int    `json:"tenant_id"`
	Subject    string `json:"subject"`
	HTML       string `json:"html"`
	Text       string `json:"text"`
}

func validateTemplate(t *model.RetentionTemplate) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Subject = strings.TrimSpace(t.Subject)
	t.CTARoute = strings.TrimSpace(t.CTARoute)

	if t.Name == "" {
		return fmt.Errorf("%w: name is required", appErrors.ErrInvalidTemplate)
	}
	if !t.Segment.Valid() {
		return fmt.Errorf("%w: unknown segment %q", appErrors.ErrInvalidTemplate, t.Segment)
	}
	if t.Subject == "" {
		return fmt.Errorf("%w: subject is required", appErrors.ErrInvalidTemplate)
	}
	if strings.TrimSpace(t.BodyHTML) == "" {
		return fmt.Errorf("%w: body is required", appErrors.ErrInvalidTemplate)
	}
	if t.CTARoute == "" {
		t.CTARoute = "/dashboard"
	}
	if !strings.HasPrefix(t.CTARoute, "/") || strings.HasPrefix(t.CTARoute, "//") {
		return fmt.Errorf("%w: cta_route must be a path on the app", appErrors.ErrInvalidTemplate)
	}
	return nil
}

func (s *RetentionTemplateService) CreateTemplate(ctx context.Context, t *model.RetentionTemplate) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.TemplateRepo.Create(ctx, t)
}

func (s *RetentionTemplateService) UpdateTemplate(ctx context.Context, t *model.RetentionTemplate) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.TemplateRepo.Update(ctx, t)
}

func (s *RetentionTemplateService) GetTemplate(ctx context.Context, id int) (*model.RetentionTemplate, error) {
	return s.TemplateRepo.GetByID(ctx, id)
}

// ListTemplates fetches templates with pagination
func (s *RetentionTemplateService) ListTemplates(ctx context.Context, page, pageSize int, filter repository.TemplateFilter) ([]model.RetentionTemplate, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.TemplateRepo.ListTemplates(ctx, offset, pageSize, filter)
	if err != nil {
		return nil, nil, err
	}

	templates := make([]model.RetentionTemplate, len(ptrs))
	for i, t := range ptrs {
		templates[i] = *t
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return templates, pagination, nil
}

// Preview renders a template for a tenant. overrideBody, when non-blank, replaces the
// stored body so operators can try edits before saving them.
func (s *RetentionTemplateService) Preview(ctx context.Context, templateID, tenantID int, overrideBody *string) (*PreviewResult, error) {
	tmpl, err := s.TemplateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	content := catalog.RetentionContent(tmpl)
	if overrideBody != nil && strings.TrimSpace(*overrideBody) != "" {
		content.Body = *overrideBody
		content.Text = ""
	}

	msg := render.Build(content, render.NewTokens(s.BaseURL, tenant))
	return &PreviewResult{
		TemplateID: tmpl.ID,
		TenantID:   tenant.ID,
		Subject:    msg.Subject,
		HTML:       msg.HTML,
		Text:       msg.Text,
	}, nil
}
