// Package prommetrics exports session and resolution counters to Prometheus.
package prommetrics

import (
	"rewardcore/internal/domain/fulfillment"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	sessions    *prometheus.CounterVec
	claims      *prometheus.CounterVec
	resolutions *prometheus.CounterVec
}

// MustNewMetrics registers the collectors on reg and panics on duplicates.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rewardcore",
			Name:      "session_events_total",
			Help:      "Session lifecycle outcomes by kind.",
		}, []string{"kind"}),
		claims: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rewardcore",
			Name:      "claims_total",
			Help:      "Placement claims by outcome.",
		}, []string{"outcome"}),
		resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rewardcore",
			Name:      "container_resolutions_total",
			Help:      "Container decisions by rule and chosen container.",
		}, []string{"rule", "container"}),
	}
}

func (m *Metrics) RecordOpened()   { m.sessions.WithLabelValues("opened").Inc() }
func (m *Metrics) RecordClosed()   { m.sessions.WithLabelValues("closed").Inc() }
func (m *Metrics) RecordConflict() { m.sessions.WithLabelValues("conflict").Inc() }
func (m *Metrics) RecordFailure()  { m.sessions.WithLabelValues("failure").Inc() }

func (m *Metrics) RecordClaim(ok bool) {
	outcome := "failed"
	if ok {
		outcome = "ok"
	}
	m.claims.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ContainerResolved(_ string, container string, rule fulfillment.Rule) {
	m.resolutions.WithLabelValues(string(rule), container).Inc()
}
