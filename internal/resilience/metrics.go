package resilience

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	// BreakerState tracks the current breaker state per target
	// (0 closed, 1 open, 2 half-open).
	BreakerState *prometheus.GaugeVec

	// BreakerTransitions counts state transitions per target.
	BreakerTransitions *prometheus.CounterVec

	// BreakerOpenedTotal counts how often a breaker tripped open.
	BreakerOpenedTotal *prometheus.CounterVec
)

// MustRegisterMetrics registers breaker telemetry on the provided registry.
// Safe to call more than once.
func MustRegisterMetrics(reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open, 2=half_open).",
		}, []string{"target"})
		BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breaker_transitions_total",
			Help: "Circuit breaker state transitions.",
		}, []string{"target", "from_state", "to_state"})
		BreakerOpenedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breaker_opened_total",
			Help: "Number of times a circuit breaker opened.",
		}, []string{"target"})

		reg.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
	})
}
