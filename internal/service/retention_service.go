package service

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/unclebandit/lifecycle-messaging/internal/catalog"
	"github.com/unclebandit/lifecycle-messaging/internal/delivery"
	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/render"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
	"github.com/unclebandit/lifecycle-messaging/internal/segment"
)

const (
	// OnboardingQuietPeriod keeps retention mail away from tenants still in the onboarding sequence.
	OnboardingQuietPeriod = 48 * time.Hour
	RetentionCooldown     = 7 * 24 * time.Hour
)

type RetentionService struct {
	Tenants   repository.TenantRepositoryInterface
	Templates repository.RetentionTemplateRepositoryInterface
	Sends     repository.RetentionSendRepositoryInterface
	Activity  MetricsSource
	Mailer    delivery.Mailer
	BaseURL   string
	// SendDelay is the minimum spacing between tenants within a run.
	SendDelay time.Duration
	Logger    *zap.Logger
	Now       func() time.Time

	limiterOnce sync.Once
	limiter     *rate.Limiter
}

func (s *RetentionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *RetentionService) pace() *rate.Limiter {
	s.limiterOnce.Do(func() {
		limit := rate.Inf
		if s.SendDelay > 0 {
			limit = rate.Every(s.SendDelay)
		}
		s.limiter = rate.NewLimiter(limit, 1)
	})
	return s.limiter
}

// Run classifies every eligible tenant and sends the segment's active template.
// Only a failure to compute the eligible population is returned as an error.
func (s *RetentionService) Run(ctx context.Context) (RunResult, error) {
	var result RunResult
	log := s.Logger.With(zap.String("job", kindRetention), zap.String("run_id", uuid.NewString()))

	now := s.now()
	tenants, err := s.Tenants.ListEligibleForRetention(ctx, now.Add(-OnboardingQuietPeriod), now.Add(-RetentionCooldown))
	if err != nil {
		log.Error("failed to list tenants eligible for retention", zap.Error(err))
		return result, err
	}

	for i := range tenants {
		if err := s.pace().Wait(ctx); err != nil {
			return result, err
		}
		result.Processed++
		switch s.processTenant(ctx, log, &tenants[i], now) {
		case model.SendStatusSent:
			result.Sent++
		case model.SendStatusFailed:
			result.Failed++
		default:
			result.Skipped++
		}
	}

	log.Info("retention run finished",
		zap.Int("eligible", len(tenants)),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *RetentionService) processTenant(ctx context.Context, log *zap.Logger, t *model.Tenant, now time.Time) string {
	log = log.With(zap.Int("tenant_id", t.ID))

	if t.IsPrivileged() || t.Suspended {
		return model.SendStatusSkipped
	}

	m, err := s.Activity.Metrics(ctx, t.ID, now)
	if err != nil {
		log.Error("failed to compute activity metrics", zap.Error(err))
		return model.SendStatusSkipped
	}
	decision := segment.Evaluate(t.CreatedAt, m)
	metrics.SegmentClassificationsTotal.WithLabelValues(string(decision.Segment)).Inc()
	log = log.With(zap.String("segment", string(decision.Segment)), zap.Int("rule", decision.Rule))

	tmpl, err := s.Templates.GetActiveForSegment(ctx, decision.Segment)
	if err != nil {
		log.Error("failed to load retention template", zap.Error(err))
		return model.SendStatusSkipped
	}
	if tmpl == nil {
		log.Info("no active template for segment")
		metrics.SendsTotal.WithLabelValues(kindRetention, model.SendStatusSkipped).Inc()
		return model.SendStatusSkipped
	}
	log = log.With(zap.Int("template", tmpl.ID))

	rec := &model.RetentionSendRecord{
		TenantID:   t.ID,
		TemplateID: tmpl.ID,
		TrackingID: uuid.NewString(),
		Segment:    decision.Segment,
		Status:     model.SendStatusSent,
		CreatedAt:  now,
	}

	msg := render.Tracked(catalog.RetentionContent(tmpl), render.NewTokens(s.BaseURL, t), rec.TrackingID)

	email := delivery.NewEmail(t.Email,
		delivery.WithSubject(msg.Subject),
		delivery.WithHTML(msg.HTML),
		delivery.WithText(msg.Text),
		delivery.WithIdempotencyKey(idempotencyKey(kindRetention, t.ID, strconv.Itoa(tmpl.ID))),
		delivery.Header("X-Lifecycle-Segment", string(decision.Segment)),
	)
	if err := s.Mailer.Send(ctx, email); err != nil {
		rec.Status = model.SendStatusFailed
		rec.LastError = err.Error()
		log.Warn("retention email failed", zap.Error(err))
	} else {
		sentAt := now
		rec.SentAt = &sentAt
		log.Info("retention email sent")
	}
	metrics.SendsTotal.WithLabelValues(kindRetention, rec.Status).Inc()

	if err := s.Sends.Create(ctx, rec); err != nil {
		log.Error("failed to write retention ledger row", zap.Error(err))
	}
	return rec.Status
}

// Stats reports ledger totals with open and click rates over sent messages.
func (s *RetentionService) Stats(ctx context.Context) (*model.RetentionStats, error) {
	stats, err := s.Sends.Stats(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if stats.Sent > 0 {
		stats.OpenRate = float64(stats.Opened) / float64(stats.Sent)
		stats.ClickRate = float64(stats.Clicked) / float64(stats.Sent)
	}
	return stats, nil
}

// RecordOpen marks the message behind trackingID as opened.
func (s *RetentionService) RecordOpen(ctx context.Context, trackingID string) (bool, error) {
	if _, err := uuid.Parse(trackingID); err != nil {
		return false, nil
	}
	return s.Sends.MarkOpened(ctx, trackingID, s.now())
}

// RecordClick marks the message as clicked and returns where to send the reader.
// Only targets on the canonical host are honoured; anything else lands on the dashboard.
func (s *RetentionService) RecordClick(ctx context.Context, trackingID, target string) (string, error) {
	redirect := s.SafeRedirect(target)
	if _, err := uuid.Parse(trackingID); err != nil {
		return redirect, nil
	}
	_, err := s.Sends.MarkClicked(ctx, trackingID, s.now())
	return redirect, err
}

func (s *RetentionService) SafeRedirect(target string) string {
	fallback := s.BaseURL + "/dashboard"
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host != base.Host {
		return fallback
	}
	return u.String()
}
