// internal/metrics/prometheus.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var SendsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifecycle_sends_total",
		Help: "Lifecycle email send attempts by kind (onboarding, retention) and outcome",
	},
	[]string{"kind", "status"},
)

var SchedulerRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifecycle_scheduler_runs_total",
		Help: "Scheduler runs by job and result",
	},
	[]string{"job", "result"},
)

var SchedulerRunDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "lifecycle_scheduler_run_duration_seconds",
		Help:    "Wall time of a single scheduler run",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
	},
	[]string{"job"},
)

var SegmentClassificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifecycle_segment_classifications_total",
		Help: "Tenants classified into each segment by the retention run",
	},
	[]string{"segment"},
)

var ActivityEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifecycle_activity_events_total",
		Help: "Activity events accepted or dropped by the event log",
	},
	[]string{"result"},
)

var ProviderCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifecycle_provider_calls_total",
		Help: "Calls to the email delivery provider by outcome",
	},
	[]string{"provider", "result"},
)

func Init() {
	prometheus.MustRegister(SendsTotal)
	prometheus.MustRegister(SchedulerRunsTotal)
	prometheus.MustRegister(SchedulerRunDuration)
	prometheus.MustRegister(SegmentClassificationsTotal)
	prometheus.MustRegister(ActivityEventsTotal)
	prometheus.MustRegister(ProviderCallsTotal)
}
