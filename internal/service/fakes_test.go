package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/unclebandit/lifecycle-messaging/internal/delivery"
	appErrors "github.com/unclebandit/lifecycle-messaging/internal/errors"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
)

// fakeStore mirrors the SQL eligibility rules over in-memory tables.
type fakeStore struct {
	mu         sync.Mutex
	tenants    map[int]model.Tenant
	onboarding []model.OnboardingSendRecord
	retention  []model.RetentionSendRecord
	templates  []*model.RetentionTemplate
	events     []model.ActivityEvent

	listErrDays map[int]error
}

func newFakeStore(tenants ...model.Tenant) *fakeStore {
	s := &fakeStore{tenants: map[int]model.Tenant{}, listErrDays: map[int]error{}}
	for _, t := range tenants {
		s.tenants[t.ID] = t
	}
	return s
}

func (s *fakeStore) sortedTenants() []model.Tenant {
	out := make([]model.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- tenants ---

type fakeTenants struct{ *fakeStore }

func (f fakeTenants) GetByID(_ context.Context, id int) (*model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return nil, appErrors.NewTenantNotFound(id)
	}
	return &t, nil
}

func (f fakeTenants) ListEligibleForOnboardingDay(_ context.Context, day int, now time.Time) ([]model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErrDays[day]; err != nil {
		return nil, err
	}
	newest := now.Add(-time.Duration(day) * 24 * time.Hour)
	oldest := now.Add(-time.Duration(day+1) * 24 * time.Hour)
	var out []model.Tenant
	for _, t := range f.sortedTenants() {
		if t.Role == model.RoleAdmin || t.CreatedAt.After(newest) || !t.CreatedAt.After(oldest) {
			continue
		}
		if f.hasOnboardingDay(t.ID, day) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// ListEligibleForRetention mirrors the query in repository.TenantRepository: only sent
// records start the quiet period and the cool-down. tenant_repository_test.go runs the
// real query against Postgres.
func (f fakeTenants) ListEligibleForRetention(_ context.Context, onboardingSince, retentionSince time.Time) ([]model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Tenant
	for _, t := range f.sortedTenants() {
		if t.Role == model.RoleAdmin || t.Suspended {
			continue
		}
		if f.sentOnboardingAfter(t.ID, onboardingSince) || f.sentRetentionAfter(t.ID, retentionSince) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) hasOnboardingDay(tenantID, day int) bool {
	for _, r := range s.onboarding {
		if r.TenantID == tenantID && r.Day == day {
			return true
		}
	}
	return false
}

func (s *fakeStore) sentOnboardingAfter(tenantID int, since time.Time) bool {
	for _, r := range s.onboarding {
		if r.TenantID == tenantID && r.Status == model.SendStatusSent && r.CreatedAt.After(since) {
			return true
		}
	}
	return false
}

func (s *fakeStore) sentRetentionAfter(tenantID int, since time.Time) bool {
	for _, r := range s.retention {
		if r.TenantID == tenantID && r.Status == model.SendStatusSent && r.CreatedAt.After(since) {
			return true
		}
	}
	return false
}

// --- onboarding ledger ---

type fakeOnboardingSends struct{ *fakeStore }

func (f fakeOnboardingSends) Create(_ context.Context, rec *model.OnboardingSendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = len(f.onboarding) + 1
	f.onboarding = append(f.onboarding, *rec)
	return nil
}

func (f fakeOnboardingSends) Exists(_ context.Context, tenantID, day int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasOnboardingDay(tenantID, day), nil
}

func (f fakeOnboardingSends) HasTemplate(_ context.Context, tenantID int, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.onboarding {
		if r.TenantID == tenantID && r.TemplateKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeOnboardingSends) ListByTenant(_ context.Context, tenantID int) ([]model.OnboardingSendRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.OnboardingSendRecord{}
	for _, r := range f.onboarding {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- retention ledger ---

type fakeRetentionSends struct{ *fakeStore }

func (f fakeRetentionSends) Create(_ context.Context, rec *model.RetentionSendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = len(f.retention) + 1
	f.retention = append(f.retention, *rec)
	return nil
}

func (f fakeRetentionSends) mark(trackingID string, apply func(r *model.RetentionSendRecord)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.retention {
		if f.retention[i].TrackingID == trackingID {
			apply(&f.retention[i])
			return true
		}
	}
	return false
}

func (f fakeRetentionSends) MarkOpened(_ context.Context, trackingID string, at time.Time) (bool, error) {
	return f.mark(trackingID, func(r *model.RetentionSendRecord) {
		if r.OpenedAt == nil {
			r.OpenedAt = &at
		}
	}), nil
}

func (f fakeRetentionSends) MarkClicked(_ context.Context, trackingID string, at time.Time) (bool, error) {
	return f.mark(trackingID, func(r *model.RetentionSendRecord) {
		if r.ClickedAt == nil {
			r.ClickedAt = &at
		}
		if r.OpenedAt == nil {
			r.OpenedAt = &at
		}
	}), nil
}

func (f fakeRetentionSends) Stats(_ context.Context, now time.Time) (*model.RetentionStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.RetentionStats{ByStatus: map[string]int{}, BySegment: map[model.Segment]model.SegmentStats{}}
	for _, r := range f.retention {
		stats.Total++
		stats.ByStatus[r.Status]++
		seg := stats.BySegment[r.Segment]
		if r.Status == model.SendStatusSent {
			stats.Sent++
			seg.Sent++
			if r.CreatedAt.After(now.Add(-7 * 24 * time.Hour)) {
				stats.SentLast7Days++
			}
			if r.CreatedAt.After(now.Add(-30 * 24 * time.Hour)) {
				stats.SentLast30Days++
			}
			if r.OpenedAt != nil {
				stats.Opened++
			}
			if r.ClickedAt != nil {
				stats.Clicked++
			}
		} else if r.Status == model.SendStatusFailed {
			seg.Failed++
		}
		if r.OpenedAt != nil {
			seg.Opened++
		}
		if r.ClickedAt != nil {
			seg.Clicked++
		}
		stats.BySegment[r.Segment] = seg
	}
	return stats, nil
}

// --- retention templates ---

type fakeTemplates struct{ *fakeStore }

func (f fakeTemplates) Create(_ context.Context, t *model.RetentionTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = len(f.templates) + 1
	cp := *t
	f.templates = append(f.templates, &cp)
	return nil
}

func (f fakeTemplates) Update(_ context.Context, t *model.RetentionTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.templates {
		if existing.ID == t.ID {
			cp := *t
			f.templates[i] = &cp
			return nil
		}
	}
	return appErrors.NewTemplateNotFound(t.ID)
}

func (f fakeTemplates) GetByID(_ context.Context, id int) (*model.RetentionTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.templates {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, appErrors.NewTemplateNotFound(id)
}

func (f fakeTemplates) ListTemplates(_ context.Context, offset, limit int, filter repository.TemplateFilter) ([]*model.RetentionTemplate, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*model.RetentionTemplate
	for i := len(f.templates) - 1; i >= 0; i-- {
		t := f.templates[i]
		if filter.Segment != "" && string(t.Segment) != filter.Segment {
			continue
		}
		if filter.Active != nil && t.Active != *filter.Active {
			continue
		}
		all = append(all, t)
	}
	if offset >= len(all) {
		return []*model.RetentionTemplate{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (f fakeTemplates) GetActiveForSegment(_ context.Context, segment model.Segment) (*model.RetentionTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *model.RetentionTemplate
	for _, t := range f.templates {
		if t.Segment != segment || !t.Active {
			continue
		}
		if best == nil || t.Priority > best.Priority || (t.Priority == best.Priority && t.ID > best.ID) {
			best = t
		}
	}
	return best, nil
}

// --- activity events ---

type fakeEvents struct{ *fakeStore }

func (f fakeEvents) Insert(_ context.Context, e *model.ActivityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = int64(len(f.events) + 1)
	f.events = append(f.events, *e)
	return nil
}

func (f fakeEvents) CountSince(_ context.Context, tenantID int, since time.Time, types ...model.EventType) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.TenantID != tenantID || e.CreatedAt.Before(since) {
			continue
		}
		if len(types) > 0 && !containsType(types, e.EventType) {
			continue
		}
		n++
	}
	return n, nil
}

func (f fakeEvents) HasEventSince(ctx context.Context, tenantID int, eventType model.EventType, since time.Time) (bool, error) {
	n, err := f.CountSince(ctx, tenantID, since, eventType)
	return n > 0, err
}

func (f fakeEvents) LastOfType(_ context.Context, tenantID int, eventType model.EventType) (*model.ActivityEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *model.ActivityEvent
	for i := range f.events {
		e := f.events[i]
		if e.TenantID == tenantID && e.EventType == eventType && (last == nil || !e.CreatedAt.Before(last.CreatedAt)) {
			last = &e
		}
	}
	return last, nil
}

func containsType(types []model.EventType, t model.EventType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (s *fakeStore) addEvents(tenantID int, t model.EventType, at time.Time, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.events = append(s.events, model.ActivityEvent{
			ID: int64(len(s.events) + 1), TenantID: tenantID, EventType: t, CreatedAt: at,
		})
	}
}

// --- mailer ---

type recordingMailer struct {
	mu     sync.Mutex
	sent   []delivery.Email
	failTo map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, e delivery.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	if m.failTo[e.To] {
		return errors.New("provider rejected message")
	}
	return nil
}

func (m *recordingMailer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var (
	_ repository.TenantRepositoryInterface            = fakeTenants{}
	_ repository.OnboardingSendRepositoryInterface    = fakeOnboardingSends{}
	_ repository.RetentionSendRepositoryInterface     = fakeRetentionSends{}
	_ repository.RetentionTemplateRepositoryInterface = fakeTemplates{}
	_ repository.ActivityEventRepositoryInterface     = fakeEvents{}
)
