// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/config"
	"github.com/unclebandit/lifecycle-messaging/internal/db"
	"github.com/unclebandit/lifecycle-messaging/internal/logger"
	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
	"github.com/unclebandit/lifecycle-messaging/internal/queue"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
)

// The worker drains activity events from RabbitMQ into Postgres. Run it next to the
// server when AMQP_URL is set to add consumers without adding HTTP capacity.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the event worker")
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

	q, err := queue.DialAMQP(cfg.AMQPURL, lg)
	if err != nil {
		lg.Fatal("queue unavailable", zap.Error(err))
	}
	defer q.Close()

	eventRepo := &repository.ActivityEventRepository{DB: conn}
	if err := queue.StartActivityEventSubscriber(q, eventRepo, lg); err != nil {
		lg.Fatal("failed to register consumer", zap.Error(err))
	}

	lg.Info("worker running, waiting for activity events", zap.String("queue", queue.TopicActivityEvents))
	<-ctx.Done()
	lg.Info("worker stopping")
}
