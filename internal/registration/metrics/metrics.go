package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration lifecycle.
type Metrics struct {
	// Lifecycle outcomes by intent (create, status, update, cancel) and
	// result (success, rejected).
	LifecycleOutcome *prometheus.CounterVec

	// Lifecycle operation latency by intent, store call included.
	LifecycleLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all registration metrics registered.
func New() *Metrics {
	return &Metrics{
		LifecycleOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vanadium_registration_outcomes_total",
			Help: "Total registration lifecycle outcomes by intent and result",
		}, []string{"intent", "result"}),

		LifecycleLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vanadium_registration_duration_seconds",
			Help:    "Duration of registration lifecycle operations by intent",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"intent"}),
	}
}

// IncrementOutcome records one lifecycle outcome.
func (m *Metrics) IncrementOutcome(intent, result string) {
	if m != nil {
		m.LifecycleOutcome.WithLabelValues(intent, result).Inc()
	}
}

// ObserveLatency records the duration of one lifecycle operation.
func (m *Metrics) ObserveLatency(intent string, d time.Duration) {
	if m != nil {
		m.LifecycleLatency.WithLabelValues(intent).Observe(d.Seconds())
	}
}
