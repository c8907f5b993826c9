package migration

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects migration step execution statistics. A nil Metrics is
// valid and collects nothing.
type Metrics struct {
	steps    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics returns metrics registered with given registerer. When reg is
// nil, collectors are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		steps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkconv",
			Subsystem: "migration",
			Name:      "steps_total",
			Help:      "Number of migration steps applied, by pass and step.",
		}, []string{"pass", "step"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkconv",
			Subsystem: "migration",
			Name:      "step_failures_total",
			Help:      "Number of migration steps that failed, by pass and step.",
		}, []string{"pass", "step"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pkconv",
			Subsystem: "migration",
			Name:      "step_duration_seconds",
			Help:      "Duration of a single migration step.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		}, []string{"pass"}),
	}
}

func (m *Metrics) observe(pass Pass, s Step, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(pass)).Observe(took.Seconds())
	if err != nil {
		m.failures.WithLabelValues(string(pass), s.String()).Inc()
		return
	}
	m.steps.WithLabelValues(string(pass), s.String()).Inc()
}
