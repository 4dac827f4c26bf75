// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/config"
	"github.com/unclebandit/lifecycle-messaging/internal/controller"
	"github.com/unclebandit/lifecycle-messaging/internal/db"
	"github.com/unclebandit/lifecycle-messaging/internal/delivery"
	"github.com/unclebandit/lifecycle-messaging/internal/handler"
	"github.com/unclebandit/lifecycle-messaging/internal/logger"
	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
	"github.com/unclebandit/lifecycle-messaging/internal/queue"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
	"github.com/unclebandit/lifecycle-messaging/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		lg.Fatal("migration failed", zap.Error(err))
	}

	tenantRepo := &repository.TenantRepository{DB: conn}
	eventRepo := &repository.ActivityEventRepository{DB: conn}
	onboardingRepo := &repository.OnboardingSendRepository{DB: conn}
	retentionRepo := &repository.RetentionSendRepository{DB: conn}
	templateRepo := &repository.RetentionTemplateRepository{DB: conn}

	q, closeQueue := buildQueue(cfg, lg)
	defer closeQueue()
	if err := queue.StartActivityEventSubscriber(q, eventRepo, lg); err != nil {
		lg.Fatal("failed to subscribe to activity events", zap.Error(err))
	}

	mailer := buildMailer(cfg, lg)

	activity := &service.ActivityService{Repo: eventRepo, Queue: q, Logger: lg}

	onboarding := &service.OnboardingService{
		Tenants: tenantRepo,
		Sends:   onboardingRepo,
		Mailer:  mailer,
		BaseURL: cfg.BaseURL,
		Enabled: cfg.Onboarding.Enabled,
		Logger:  lg,
	}
	retention := &service.RetentionService{
		Tenants:   tenantRepo,
		Templates: templateRepo,
		Sends:     retentionRepo,
		Activity:  activity,
		Mailer:    mailer,
		BaseURL:   cfg.BaseURL,
		SendDelay: cfg.Retention.SendDelay,
		Logger:    lg,
	}
	templates := &service.RetentionTemplateService{
		TemplateRepo: templateRepo,
		TenantRepo:   tenantRepo,
		BaseURL:      cfg.BaseURL,
	}

	onboardingWorker := service.NewWorker("onboarding", onboarding.Run, cfg.Onboarding.Interval, lg)
	onboardingWorker.RunAtStart = true

	retentionWorker := service.NewWorker("retention", retention.Run, cfg.Retention.Interval, lg)
	retentionWorker.RunAtStart = true
	retentionWorker.StartDelay = cfg.Retention.StartDelay

	onboardingWorker.Start(ctx)
	retentionWorker.Start(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	(&handler.EventHandler{Activity: activity}).Register(r)
	(&handler.TrackingHandler{Tracker: retention, Logger: lg}).Register(r)
	(&controller.OnboardingController{Service: onboarding}).Register(r)
	(&controller.RetentionController{Service: retention, Worker: retentionWorker}).Register(r)
	(&controller.TemplateController{Service: templates}).Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("http shutdown failed", zap.Error(err))
	}
	onboardingWorker.Stop()
	retentionWorker.Stop()
	lg.Info("stopped cleanly")
}

// buildQueue returns the RabbitMQ queue when AMQP_URL is set and the in-process queue otherwise.
func buildQueue(cfg *config.Config, lg *zap.Logger) (queue.Queue, func()) {
	if cfg.AMQPURL == "" {
		return queue.NewInMemoryQueue(lg), func() {}
	}
	q, err := queue.DialAMQP(cfg.AMQPURL, lg)
	if err != nil {
		lg.Fatal("queue unavailable", zap.Error(err))
	}
	return q, func() {
		if err := q.Close(); err != nil {
			lg.Warn("failed to close queue", zap.Error(err))
		}
	}
}

func buildMailer(cfg *config.Config, lg *zap.Logger) delivery.Mailer {
	var mailer delivery.Mailer
	switch cfg.Mail.Provider {
	case "sendgrid":
		mailer = delivery.NewSendGridMailer(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, lg)
	default:
		mailer = &delivery.LogMailer{Logger: lg}
	}
	if cfg.RedisAddr == "" {
		return mailer
	}
	return &delivery.DedupMailer{
		Next:    mailer,
		Claimer: delivery.NewRedisClaimer(cfg.RedisAddr),
		TTL:     cfg.DedupeTTL,
		Logger:  lg,
	}
}
