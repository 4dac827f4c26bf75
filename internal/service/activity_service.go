package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/queue"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
	"github.com/unclebandit/lifecycle-messaging/internal/segment"
)

// MetricsSource computes the classifier input for one tenant.
type MetricsSource interface {
	Metrics(ctx context.Context, tenantID int, asOf time.Time) (segment.Metrics, error)
}

// ActivityService is the Activity Event Log. Writes go through the queue when one is
// configured and straight to the repository otherwise.
type ActivityService struct {
	Repo   repository.ActivityEventRepositoryInterface
	Queue  queue.Queue
	Logger *zap.Logger
}

// Record logs a product action. It never fails the caller: problems are logged and dropped.
func (s *ActivityService) Record(ctx context.Context, tenantID int, eventType model.EventType, payload any) {
	log := s.Logger.With(zap.Int("tenant_id", tenantID), zap.String("event_type", string(eventType)))

	if tenantID <= 0 || !eventType.Valid() {
		log.Warn("ignoring invalid activity event")
		metrics.ActivityEventsTotal.WithLabelValues("dropped").Inc()
		return
	}

	event := model.ActivityEvent{TenantID: tenantID, EventType: eventType, CreatedAt: time.Now()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Warn("activity payload is not serialisable, recording without it", zap.Error(err))
		} else {
			event.Payload = raw
		}
	}

	if s.Queue == nil {
		if err := s.Repo.Insert(ctx, &event); err != nil {
			log.Error("failed to record activity event", zap.Error(err))
			metrics.ActivityEventsTotal.WithLabelValues("dropped").Inc()
			return
		}
		metrics.ActivityEventsTotal.WithLabelValues("stored").Inc()
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to encode activity event", zap.Error(err))
		return
	}
	if err := s.Queue.Publish(ctx, queue.TopicActivityEvents, body); err != nil {
		log.Error("failed to publish activity event", zap.Error(err))
		metrics.ActivityEventsTotal.WithLabelValues("dropped").Inc()
		return
	}
	metrics.ActivityEventsTotal.WithLabelValues("queued").Inc()
}

func (s *ActivityService) CountSince(ctx context.Context, tenantID int, since time.Time, types ...model.EventType) (int, error) {
	return s.Repo.CountSince(ctx, tenantID, since, types...)
}

func (s *ActivityService) HasEventSince(ctx context.Context, tenantID int, eventType model.EventType, since time.Time) (bool, error) {
	return s.Repo.HasEventSince(ctx, tenantID, eventType, since)
}

// LastOfType returns nil when the tenant never produced the event.
func (s *ActivityService) LastOfType(ctx context.Context, tenantID int, eventType model.EventType) (*model.ActivityEvent, error) {
	return s.Repo.LastOfType(ctx, tenantID, eventType)
}

// Metrics builds the classifier bundle from the event log as of asOf.
func (s *ActivityService) Metrics(ctx context.Context, tenantID int, asOf time.Time) (segment.Metrics, error) {
	r := &metricReader{ctx: ctx, repo: s.Repo, tenantID: tenantID}
	week := asOf.Add(-7 * 24 * time.Hour)
	fortnight := asOf.Add(-14 * 24 * time.Hour)
	var lifetime time.Time

	m := segment.Metrics{
		AsOf:           asOf,
		LoginCount7d:   r.count(week, model.EventLogin),
		LoginCount14d:  r.count(fortnight, model.EventLogin),
		LeadCount:      r.count(lifetime, model.EventLeadCreated),
		QuoteCount:     r.count(lifetime, model.EventQuoteCreated),
		SentQuoteCount: r.count(lifetime, model.EventQuoteSent),
		OrderCount:     r.count(lifetime, model.EventOrderCreated),

		HasConfiguredCalculator: r.count(lifetime, model.EventCalculatorConfigured) > 0,
		HasSharedLink:           r.count(lifetime, model.EventLinkShared, model.EventLinkCopied) > 0,

		KeyActionCount7d:  r.count(week, model.KeyActions...),
		KeyActionCount14d: r.count(fortnight, model.KeyActions...),
	}
	if r.err != nil {
		return segment.Metrics{}, r.err
	}
	return m, nil
}

// metricReader keeps the first error so Metrics can be written as one literal.
type metricReader struct {
	ctx      context.Context
	repo     repository.ActivityEventRepositoryInterface
	tenantID int
	err      error
}

func (r *metricReader) count(since time.Time, types ...model.EventType) int {
	if r.err != nil {
		return 0
	}
	n, err := r.repo.CountSince(r.ctx, r.tenantID, since, types...)
	if err != nil {
		r.err = err
	}
	return n
}

var _ MetricsSource = (*ActivityService)(nil)
