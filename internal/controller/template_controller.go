package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
	"github.com/unclebandit/lifecycle-messaging/internal/service"
)

type TemplateService interface {
	ListTemplates(ctx context.Context, page, pageSize int, filter repository.TemplateFilter) ([]model.RetentionTemplate, map[string]int, error)
	GetTemplate(ctx context.Context, id int) (*model.RetentionTemplate, error)
	CreateTemplate(ctx context.Context, t *model.RetentionTemplate) error
	UpdateTemplate(ctx context.Context, t *model.RetentionTemplate) error
	Preview(ctx context.Context, templateID, tenantID int, overrideBody *string) (*service.PreviewResult, error)
}

type TemplateController struct {
	Service TemplateService
}

func (c *TemplateController) Register(r chi.Router) {
	r.Get("/admin/templates", c.ListTemplates)
	r.Post("/admin/templates", c.CreateTemplate)
	r.Get("/admin/templates/{id}", c.GetTemplate)
	r.Put("/admin/templates/{id}", c.UpdateTemplate)
	r.Post("/admin/templates/{id}/preview", c.Preview)
}

type templateBody struct {
	Name     string        `json:"name"`
	Segment  model.Segment `json:"segment"`
	Priority int           `json:"priority"`
	Active   *bool         `json:"active"`
	Subject  string        `json:"subject"`
	BodyHTML string        `json:"body_html"`
	BodyText string        `json:"body_text"`
	CTALabel string        `json:"cta_label"`
	CTARoute string        `json:"cta_route"`
}

func (b templateBody) apply(t *model.RetentionTemplate) {
	t.Name = b.Name
	t.Segment = b.Segment
	t.Priority = b.Priority
	t.Active = b.Active == nil || *b.Active
	t.Subject = b.Subject
	t.BodyHTML = b.BodyHTML
	t.BodyText = b.BodyText
	t.CTALabel = b.CTALabel
	t.CTARoute = b.CTARoute
}

func (c *TemplateController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	filter := repository.TemplateFilter{Segment: r.URL.Query().Get("segment")}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "invalid active filter", http.StatusBadRequest)
			return
		}
		filter.Active = &active
	}

	templates, pagination, err := c.Service.ListTemplates(r.Context(), page, pageSize, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":       templates,
		"pagination": pagination,
	})
}

func (c *TemplateController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}
	tmpl, err := c.Service.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (c *TemplateController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	tmpl := &model.RetentionTemplate{}
	body.apply(tmpl)
	if err := c.Service.CreateTemplate(r.Context(), tmpl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (c *TemplateController) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}
	var body templateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	tmpl := &model.RetentionTemplate{ID: id}
	body.apply(tmpl)
	if err := c.Service.UpdateTemplate(r.Context(), tmpl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (c *TemplateController) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}
	var body struct {
		TenantID     int     `json:"tenant_id"`
		OverrideBody *string `json:"override_body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	preview, err := c.Service.Preview(r.Context(), id, body.TenantID, body.OverrideBody)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
