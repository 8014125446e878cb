package quota

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marketdesk/server/internal/domain"
)

// Metrics instruments the quota pipeline. A nil *Metrics records nothing.
type Metrics struct {
	attempts   *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	initialize *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketdesk",
				Subsystem: "quota",
				Name:      "increment_attempts_total",
				Help:      "Remote counter store calls made while recording feature usage, including retries",
			},
			[]string{"feature"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketdesk",
				Subsystem: "quota",
				Name:      "increment_outcomes_total",
				Help:      "Final result of each usage increment by feature and outcome",
			},
			[]string{"feature", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "marketdesk",
				Subsystem: "quota",
				Name:      "remote_latency_seconds",
				Help:      "Latency of a single remote counter store increment call",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"feature"},
		),
		initialize: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketdesk",
				Subsystem: "quota",
				Name:      "initialize_total",
				Help:      "Service initializations by session mode and result",
			},
			[]string{"mode", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.outcomes, m.latency, m.initialize)
	}
	return m
}

func (m *Metrics) attempt(f domain.FeatureKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(f)).Inc()
	m.latency.WithLabelValues(string(f)).Observe(elapsed.Seconds())
}

func (m *Metrics) outcome(f domain.FeatureKind, o Outcome) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(string(f), string(o)).Inc()
}

func (m *Metrics) initialized(mode domain.SessionMode, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "degraded"
	}
	m.initialize.WithLabelValues(string(mode), result).Inc()
}
