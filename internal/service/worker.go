package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
)

// Job is one scheduler run.
type Job func(ctx context.Context) (RunResult, error)

// Worker owns the timer for one recurring job. It is created once at startup and
// handed to whatever needs to trigger or stop it.
type Worker struct {
	Name     string
	Job      Job
	Interval time.Duration
	// RunAtStart runs the job once StartDelay after Start, ahead of the first tick.
	RunAtStart bool
	StartDelay time.Duration
	Logger     *zap.Logger

	trigger chan struct{}
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewWorker(name string, job Job, interval time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		Name:     name,
		Job:      job,
		Interval: interval,
		Logger:   logger.With(zap.String("worker", name)),
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the loop. Calling Start on a running worker is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(ctx, w.done)
}

func (w *Worker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	var first <-chan time.Time
	if w.RunAtStart {
		timer := time.NewTimer(w.StartDelay)
		defer timer.Stop()
		first = timer.C
	}

	w.Logger.Info("worker started", zap.Duration("interval", w.Interval))
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("worker stopped")
			return
		case <-first:
			first = nil
			w.RunOnce(ctx)
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-w.trigger:
			w.RunOnce(ctx)
		}
	}
}

// Trigger asks the loop for an immediate run. It returns false when a triggered run
// is already pending.
func (w *Worker) Trigger() bool {
	select {
	case w.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop cancels the loop and waits for an in-flight run to return.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunOnce executes the job synchronously and records its outcome.
func (w *Worker) RunOnce(ctx context.Context) (RunResult, error) {
	start := time.Now()
	result, err := w.Job(ctx)
	metrics.SchedulerRunDuration.WithLabelValues(w.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SchedulerRunsTotal.WithLabelValues(w.Name, "error").Inc()
		w.Logger.Error("scheduled run failed", zap.Error(err))
		return result, err
	}
	metrics.SchedulerRunsTotal.WithLabelValues(w.Name, "ok").Inc()
	return result, nil
}
