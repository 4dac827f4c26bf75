package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/lifecycle-messaging/internal/controller"
	appErrors "github.com/unclebandit/lifecycle-messaging/internal/errors"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
	"github.com/unclebandit/lifecycle-messaging/internal/service"
)

// --- Mock Retention ---

type mockRetention struct {
	runs  int
	stats *model.RetentionStats
}

func (m *mockRetention) Run(context.Context) (service.RunResult, error) {
	m.runs++
	return service.RunResult{Processed: 3, Sent: 2, Skipped: 1}, nil
}

func (m *mockRetention) Stats(context.Context) (*model.RetentionStats, error) {
	return m.stats, nil
}

type mockTrigger struct{ pending bool }

func (m *mockTrigger) Trigger() bool {
	if m.pending {
		return false
	}
	m.pending = true
	return true
}

// --- Mock Onboarding ---

type mockOnboarding struct {
	err    error
	status string
	force  bool
}

func (m *mockOnboarding) SendDay(_ context.Context, tenantID, day int, force bool) (*model.OnboardingSendRecord, error) {
	m.force = force
	if m.err != nil {
		return nil, m.err
	}
	return &model.OnboardingSendRecord{TenantID: tenantID, Day: day, Status: m.status, Forced: force}, nil
}

func (m *mockOnboarding) History(_ context.Context, tenantID int) ([]model.OnboardingSendRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []model.OnboardingSendRecord{{TenantID: tenantID, Day: 0, Status: model.SendStatusSent}}, nil
}

// --- Mock Repositories ---

type mockTemplateRepo struct {
	templates []*model.RetentionTemplate
}

func (m *mockTemplateRepo) Create(_ context.Context, t *model.RetentionTemplate) error {
	t.ID = len(m.templates) + 1
	m.templates = append(m.templates, t)
	return nil
}

func (m *mockTemplateRepo) Update(_ context.Context, t *model.RetentionTemplate) error {
	for i, existing := range m.templates {
		if existing.ID == t.ID {
			m.templates[i] = t
			return nil
		}
	}
	return appErrors.NewTemplateNotFound(t.ID)
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id int) (*model.RetentionTemplate, error) {
	for _, t := range m.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, appErrors.NewTemplateNotFound(id)
}

func (m *mockTemplateRepo) ListTemplates(_ context.Context, offset, limit int, filter repository.TemplateFilter) ([]*model.RetentionTemplate, int, error) {
	var filtered []*model.RetentionTemplate
	for _, t := range m.templates {
		if filter.Segment != "" && string(t.Segment) != filter.Segment {
			continue
		}
		if filter.Active != nil && t.Active != *filter.Active {
			continue
		}
		filtered = append(filtered, t)
	}
	total := len(filtered)

	// Simulate pagination
	start := offset
	end := offset + limit
	if start > total {
		return []*model.RetentionTemplate{}, total, nil
	}
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func (m *mockTemplateRepo) GetActiveForSegment(context.Context, model.Segment) (*model.RetentionTemplate, error) {
	return nil, nil
}

type mockTenantRepo struct{}

func (mockTenantRepo) GetByID(_ context.Context, id int) (*model.Tenant, error) {
	if id != 1 {
		return nil, appErrors.NewTenantNotFound(id)
	}
	return &model.Tenant{ID: 1, FirstName: "Alice", BusinessName: "Alice Bakes", Slug: "alice"}, nil
}

func (mockTenantRepo) ListEligibleForOnboardingDay(context.Context, int, time.Time) ([]model.Tenant, error) {
	return nil, nil
}

func (mockTenantRepo) ListEligibleForRetention(context.Context, time.Time, time.Time) ([]model.Tenant, error) {
	return nil, nil
}

func newTemplateRouter(repo *mockTemplateRepo) http.Handler {
	ctrl := &controller.TemplateController{Service: &service.RetentionTemplateService{
		TemplateRepo: repo,
		TenantRepo:   mockTenantRepo{},
		BaseURL:      "https://app.bakeryhq.test",
	}}
	r := chi.NewRouter()
	ctrl.Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// --- Test Functions ---

func TestRetentionRunNowQueuesOnWorker(t *testing.T) {
	retention := &mockRetention{}
	trigger := &mockTrigger{}
	r := chi.NewRouter()
	(&controller.RetentionController{Service: retention, Worker: trigger}).Register(r)

	w := do(t, r, "POST", "/admin/retention/run", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"queued"}`, w.Body.String())

	w = do(t, r, "POST", "/admin/retention/run", nil)
	assert.JSONEq(t, `{"status":"already_queued"}`, w.Body.String())
	assert.Zero(t, retention.runs)
}

func TestRetentionRunNowWait(t *testing.T) {
	retention := &mockRetention{}
	r := chi.NewRouter()
	(&controller.RetentionController{Service: retention, Worker: &mockTrigger{}}).Register(r)

	w := do(t, r, "POST", "/admin/retention/run?wait=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"processed":3,"sent":2,"failed":0,"skipped":1}`, w.Body.String())
	assert.Equal(t, 1, retention.runs)
}

func TestRetentionStats(t *testing.T) {
	retention := &mockRetention{stats: &model.RetentionStats{
		Total: 4, Sent: 4, SentLast7Days: 2, Opened: 2, OpenRate: 0.5,
		ByStatus:  map[string]int{"sent": 4},
		BySegment: map[model.Segment]model.SegmentStats{model.SegmentAtRisk: {Sent: 4, Opened: 2}},
	}}
	r := chi.NewRouter()
	(&controller.RetentionController{Service: retention, Worker: &mockTrigger{}}).Register(r)

	w := do(t, r, "GET", "/admin/retention/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res model.RetentionStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 0.5, res.OpenRate)
	assert.Equal(t, 2, res.BySegment[model.SegmentAtRisk].Opened)
}

func TestOnboardingSendDayStatuses(t *testing.T) {
	cases := []struct {
		name   string
		target string
		mock   *mockOnboarding
		want   int
	}{
		{"sent", "/admin/tenants/1/onboarding/2/send", &mockOnboarding{status: model.SendStatusSent}, http.StatusOK},
		{"provider failure", "/admin/tenants/1/onboarding/2/send", &mockOnboarding{status: model.SendStatusFailed}, http.StatusBadGateway},
		{"already sent", "/admin/tenants/1/onboarding/2/send", &mockOnboarding{err: appErrors.ErrAlreadySent}, http.StatusConflict},
		{"excluded", "/admin/tenants/1/onboarding/2/send", &mockOnboarding{err: appErrors.ErrTenantExcluded}, http.StatusConflict},
		{"bad day", "/admin/tenants/1/onboarding/9/send", &mockOnboarding{err: appErrors.ErrInvalidDay}, http.StatusBadRequest},
		{"unknown tenant", "/admin/tenants/8/onboarding/2/send", &mockOnboarding{err: appErrors.NewTenantNotFound(8)}, http.StatusNotFound},
		{"non-numeric day", "/admin/tenants/1/onboarding/four/send", &mockOnboarding{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			(&controller.OnboardingController{Service: tc.mock}).Register(r)
			w := do(t, r, "POST", tc.target, nil)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestOnboardingForceFlag(t *testing.T) {
	mock := &mockOnboarding{status: model.SendStatusSent}
	r := chi.NewRouter()
	(&controller.OnboardingController{Service: mock}).Register(r)

	do(t, r, "POST", "/admin/tenants/1/onboarding/4/send", nil)
	assert.False(t, mock.force)

	w := do(t, r, "POST", "/admin/tenants/1/onboarding/4/send?force=true", nil)
	assert.True(t, mock.force)

	var rec model.OnboardingSendRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
	assert.True(t, rec.Forced)
	assert.Equal(t, 4, rec.Day)
}

func TestOnboardingHistory(t *testing.T) {
	r := chi.NewRouter()
	(&controller.OnboardingController{Service: &mockOnboarding{}}).Register(r)

	w := do(t, r, "GET", "/admin/tenants/1/onboarding", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tenant_id":1`)
}

func TestListTemplatesPagination(t *testing.T) {
	totalTemplates := 25
	repo := &mockTemplateRepo{}
	for i := 1; i <= totalTemplates; i++ {
		repo.templates = append(repo.templates, &model.RetentionTemplate{
			ID:      i,
			Name:    "Template " + strconv.Itoa(i),
			Segment: model.SegmentAtRisk,
			Active:  true,
		})
	}
	repo.templates = append(repo.templates, &model.RetentionTemplate{ID: 99, Segment: model.SegmentLeadsNoQuotes, Active: true})
	h := newTemplateRouter(repo)

	pageSize := 10
	seen := map[int]bool{}
	totalPages := (totalTemplates + pageSize - 1) / pageSize

	for page := 1; page <= totalPages; page++ {
		w := do(t, h, "GET",
			"/admin/templates?page="+strconv.Itoa(page)+"&page_size="+strconv.Itoa(pageSize)+"&segment=at_risk&active=true", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Data       []model.RetentionTemplate `json:"data"`
			Pagination struct {
				Page       int `json:"page"`
				PageSize   int `json:"page_size"`
				TotalCount int `json:"total_count"`
			} `json:"pagination"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))

		assert.Equal(t, page, res.Pagination.Page)
		assert.Equal(t, pageSize, res.Pagination.PageSize)
		assert.Equal(t, totalTemplates, res.Pagination.TotalCount)

		for _, tmpl := range res.Data {
			assert.False(t, seen[tmpl.ID], "duplicate template ID %d across pages", tmpl.ID)
			seen[tmpl.ID] = true
			assert.Equal(t, model.SegmentAtRisk, tmpl.Segment)
		}
	}
	assert.Len(t, seen, totalTemplates)
}

func TestListTemplatesRejectsBadActiveFilter(t *testing.T) {
	w := do(t, newTemplateRouter(&mockTemplateRepo{}), "GET", "/admin/templates?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUpdateAndGetTemplate(t *testing.T) {
	repo := &mockTemplateRepo{}
	h := newTemplateRouter(repo)

	w := do(t, h, "POST", "/admin/templates", map[string]any{
		"name": "Nudge", "segment": "at_risk", "subject": "Hi {{first_name}}", "body_html": "Come back",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.RetentionTemplate
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, 1, created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, "/dashboard", created.CTARoute)

	w = do(t, h, "POST", "/admin/templates", map[string]any{"name": "Bad", "segment": "nope", "subject": "s", "body_html": "b"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "PUT", "/admin/templates/1", map[string]any{
		"name": "Nudge", "segment": "at_risk", "subject": "Updated", "body_html": "Come back", "active": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/admin/templates/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.RetentionTemplate
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "Updated", got.Subject)
	assert.False(t, got.Active)

	w = do(t, h, "GET", "/admin/templates/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPersonalizedPreviewHandler(t *testing.T) {
	repo := &mockTemplateRepo{}
	require.NoError(t, repo.Create(context.Background(), &model.RetentionTemplate{
		Segment: model.SegmentAtRisk, Subject: "Hi {{first_name}}", BodyHTML: "Welcome back to {{business_name}}",
	}))
	h := newTemplateRouter(repo)

	w := do(t, h, "POST", "/admin/templates/1/preview", map[string]any{"tenant_id": 1})
	require.Equal(t, http.StatusOK, w.Code)

	var res service.PreviewResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, "Hi Alice", res.Subject)
	assert.Contains(t, res.HTML, "Alice Bakes")

	w = do(t, h, "POST", "/admin/templates/1/preview", map[string]any{"tenant_id": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
