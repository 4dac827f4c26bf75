package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/catalog"
	"github.com/unclebandit/lifecycle-messaging/internal/delivery"
	appErrors "github.com/unclebandit/lifecycle-messaging/internal/errors"
	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/render"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
)

const (
	kindOnboarding = "onboarding"
	kindRetention  = "retention"
)

// RunResult is the per-run counters reported by both schedulers.
type RunResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type OnboardingService struct {
	Tenants repository.TenantRepositoryInterface
	Sends   repository.OnboardingSendRepositoryInterface
	Mailer  delivery.Mailer
	BaseURL string
	// Enabled is the operational kill switch for the whole sequence.
	Enabled bool
	Logger  *zap.Logger
	Now     func() time.Time
}

// DayBucket is the number of whole days since signup, clamped to the onboarding range.
func DayBucket(signup, now time.Time) int {
	day := int(math.Floor(now.Sub(signup).Hours() / 24))
	if day < catalog.FirstOnboardingDay {
		return catalog.FirstOnboardingDay
	}
	if day > catalog.LastOnboardingDay {
		return catalog.LastOnboardingDay
	}
	return day
}

func idempotencyKey(kind string, tenantID int, template string) string {
	return fmt.Sprintf("%s:%d:%s", kind, tenantID, template)
}

func (s *OnboardingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run walks day buckets 0..6 once. A failing bucket query skips that bucket only,
// and a failing tenant never stops the rest of the batch.
func (s *OnboardingService) Run(ctx context.Context) (RunResult, error) {
	var result RunResult
	log := s.Logger.With(zap.String("job", kindOnboarding), zap.String("run_id", uuid.NewString()))

	if !s.Enabled {
		log.Debug("onboarding emails disabled, skipping run")
		return result, nil
	}

	now := s.now()
	for day := catalog.FirstOnboardingDay; day <= catalog.LastOnboardingDay; day++ {
		tenants, err := s.Tenants.ListEligibleForOnboardingDay(ctx, day, now)
		if err != nil {
			log.Error("failed to list tenants for onboarding day", zap.Int("day", day), zap.Error(err))
			continue
		}
		for i := range tenants {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Processed++
			switch s.processTenant(ctx, log, &tenants[i], day, now) {
			case model.SendStatusSent:
				result.Sent++
			case model.SendStatusFailed:
				result.Failed++
			default:
				result.Skipped++
			}
		}
	}

	log.Info("onboarding run finished",
		zap.Int("processed", result.Processed),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *OnboardingService) processTenant(ctx context.Context, log *zap.Logger, t *model.Tenant, day int, now time.Time) string {
	log = log.With(zap.Int("tenant_id", t.ID), zap.Int("day", day))

	if t.IsPrivileged() {
		log.Debug("skipping privileged tenant")
		return model.SendStatusSkipped
	}
	if current := DayBucket(t.CreatedAt, now); current != day {
		log.Info("tenant moved out of day bucket, skipping", zap.Int("current_day", current))
		return model.SendStatusSkipped
	}

	exists, err := s.Sends.Exists(ctx, t.ID, day)
	if err != nil {
		log.Error("failed to check onboarding ledger", zap.Error(err))
		return model.SendStatusSkipped
	}
	if exists {
		log.Debug("onboarding day already recorded")
		return model.SendStatusSkipped
	}

	connected := t.ProcessorConnected()
	tmpl, err := catalog.Onboarding(day, connected)
	if err != nil {
		log.Info("no onboarding template for day", zap.Error(err))
		return model.SendStatusSkipped
	}
	sent, err := s.Sends.HasTemplate(ctx, t.ID, tmpl.Key)
	if err != nil {
		log.Error("failed to check onboarding ledger", zap.Error(err))
		return model.SendStatusSkipped
	}
	if sent {
		log.Debug("template already sent to tenant", zap.String("template", tmpl.Key))
		return model.SendStatusSkipped
	}

	rec := s.send(ctx, log, t, tmpl, false, now)
	return rec.Status
}

// send delivers one template and always writes the ledger row, whatever the outcome.
func (s *OnboardingService) send(ctx context.Context, log *zap.Logger, t *model.Tenant, tmpl catalog.OnboardingTemplate, forced bool, now time.Time) *model.OnboardingSendRecord {
	msg := render.Build(tmpl.Content(), render.NewTokens(s.BaseURL, t))

	opts := []delivery.EmailOption{
		delivery.WithSubject(msg.Subject),
		delivery.WithHTML(msg.HTML),
		delivery.WithText(msg.Text),
		delivery.Header("X-Lifecycle-Template", tmpl.Key),
	}
	if !forced {
		opts = append(opts, delivery.WithIdempotencyKey(idempotencyKey(kindOnboarding, t.ID, tmpl.Key)))
	}

	rec := &model.OnboardingSendRecord{
		TenantID:           t.ID,
		Day:                tmpl.Day,
		Status:             model.SendStatusSent,
		TemplateKey:        tmpl.Key,
		ProcessorConnected: t.ProcessorConnected(),
		Forced:             forced,
		CreatedAt:          now,
	}
	if err := s.Mailer.Send(ctx, delivery.NewEmail(t.Email, opts...)); err != nil {
		rec.Status = model.SendStatusFailed
		rec.LastError = err.Error()
		log.Warn("onboarding email failed", zap.String("template", tmpl.Key), zap.Error(err))
	} else {
		log.Info("onboarding email sent", zap.String("template", tmpl.Key))
	}
	metrics.SendsTotal.WithLabelValues(kindOnboarding, rec.Status).Inc()

	if err := s.Sends.Create(ctx, rec); err != nil {
		log.Error("failed to write onboarding ledger row", zap.String("template", tmpl.Key), zap.Error(err))
	}
	return rec
}

// SendDay sends one onboarding day to one tenant on operator request. Without force an
// existing ledger row for the day yields ErrAlreadySent; with force the check is bypassed
// and a new row is appended. A delivery failure is reported through the record's status.
func (s *OnboardingService) SendDay(ctx context.Context, tenantID, day int, force bool) (*model.OnboardingSendRecord, error) {
	if day < catalog.FirstOnboardingDay || day > catalog.LastOnboardingDay {
		return nil, appErrors.ErrInvalidDay
	}
	t, err := s.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t.IsPrivileged() || t.Suspended {
		return nil, appErrors.ErrTenantExcluded
	}

	if !force {
		exists, err := s.Sends.Exists(ctx, tenantID, day)
		if err != nil {
			return nil, fmt.Errorf("check onboarding ledger: %w", err)
		}
		if exists {
			return nil, appErrors.ErrAlreadySent
		}
	}

	tmpl, err := catalog.Onboarding(day, t.ProcessorConnected())
	if err != nil {
		return nil, err
	}

	log := s.Logger.With(zap.String("job", "onboarding_manual"), zap.Int("tenant_id", t.ID),
		zap.Int("day", day), zap.Bool("forced", force))
	return s.send(ctx, log, t, tmpl, force, s.now()), nil
}

// History lists every onboarding ledger row for a tenant, oldest first.
func (s *OnboardingService) History(ctx context.Context, tenantID int) ([]model.OnboardingSendRecord, error) {
	if _, err := s.Tenants.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.Sends.ListByTenant(ctx, tenantID)
}
