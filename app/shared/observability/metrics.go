package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-operation counters and latencies for one module.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
	RecordTagChanges(ctx context.Context, source string, count int)
}

// OperationCollectors are the Prometheus vectors shared by every module. They
// are registered once and curried per module.
type OperationCollectors struct {
	attempts   *prometheus.CounterVec
	successes  *prometheus.CounterVec
	failures   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	tagChanges *prometheus.CounterVec
}

// NewOperationCollectors creates and registers the collectors on reg.
func NewOperationCollectors(reg prometheus.Registerer) (*OperationCollectors, error) {
	c := &OperationCollectors{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tcrbot",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"module", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tcrbot",
			Name:      "operation_success_total",
			Help:      "Service operations that completed without error.",
		}, []string{"module", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tcrbot",
			Name:      "operation_failure_total",
			Help:      "Service operations that returned an error.",
		}, []string{"module", "operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tcrbot",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"module", "operation"}),
		tagChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tcrbot",
			Name:      "leaderboard_tag_changes_total",
			Help:      "Tag reassignments written to the leaderboard.",
		}, []string{"source"}),
	}
	for _, col := range []prometheus.Collector{c.attempts, c.successes, c.failures, c.durations, c.tagChanges} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ForModule returns a Metrics bound to the module label.
func (c *OperationCollectors) ForModule(module string) Metrics {
	return &prometheusMetrics{module: module, c: c}
}

type prometheusMetrics struct {
	module string
	c      *OperationCollectors
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.c.attempts.WithLabelValues(m.module, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.c.successes.WithLabelValues(m.module, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.c.failures.WithLabelValues(m.module, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.c.durations.WithLabelValues(m.module, operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordTagChanges(_ context.Context, source string, count int) {
	m.c.tagChanges.WithLabelValues(source).Add(float64(count))
}

// NoOpMetrics discards everything. Used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordTagChanges(context.Context, string, int)                  {}
