package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	CheckInCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goal_check_ins_total",
			Help: "Total number of recorded check-ins",
		},
		[]string{"kind"}, // kind: today, backfill
	)

	GoalTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goal_transitions_total",
			Help: "Total number of goal status transitions",
		},
		[]string{"to", "cause"}, // cause: check_in, auto_fail, manual
	)

	SweepRepairFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goal_sweep_repair_failures_total",
			Help: "Auto-fail repairs that could not be persisted",
		},
	)

	SettlementCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goal_settlements_total",
			Help: "Settlement attempts by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: started, succeeded, declined, error
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementCheckIn(kind string) {
	CheckInCount.WithLabelValues(kind).Inc()
}

func IncrementTransition(to, cause string) {
	GoalTransitionCount.WithLabelValues(to, cause).Inc()
}

func IncrementSweepRepairFailure() {
	SweepRepairFailures.Inc()
}

func IncrementSettlement(provider, outcome string) {
	SettlementCount.WithLabelValues(provider, outcome).Inc()
}
