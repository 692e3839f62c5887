// Package metrics exposes Prometheus instrumentation for the device flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the flow counters. A nil *Metrics is valid and records
// nothing, so instrumentation stays optional.
type Metrics struct {
	flowsStarted prometheus.Counter
	flowOutcomes *prometheus.CounterVec
	pollAttempts prometheus.Counter
}

// New registers the flow collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		flowsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "device_flows_started_total",
			Help: "Number of device authorization flows started.",
		}),
		flowOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "device_flow_outcomes_total",
			Help: "Terminal device flow outcomes by state.",
		}, []string{"state"}),
		pollAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "device_flow_poll_attempts_total",
			Help: "Number of token redemption attempts against the provider.",
		}),
	}
}

// FlowStarted records a successful device code issuance.
func (m *Metrics) FlowStarted() {
	if m == nil {
		return
	}
	m.flowsStarted.Inc()
}

// FlowFinished records a terminal flow outcome.
func (m *Metrics) FlowFinished(state string) {
	if m == nil {
		return
	}
	m.flowOutcomes.WithLabelValues(state).Inc()
}

// PollAttempt records one redemption attempt.
func (m *Metrics) PollAttempt() {
	if m == nil {
		return
	}
	m.pollAttempts.Inc()
}
