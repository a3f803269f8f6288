// Package metrics exposes the daemon's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values for rounds.
const (
	RoundGood     = "good"
	RoundFail     = "fail"
	RoundInactive = "inactive"
)

// Label values for probes.
const (
	ProbeUp   = "up"
	ProbeDown = "down"
)

// Label values for configuration applies.
const (
	ApplyOK    = "ok"
	ApplyError = "error"
)

// Metrics bundles the daemon's collectors behind a private registry
// so test instances stay isolated from each other.
type Metrics struct {
	registry *prometheus.Registry

	Rounds      *prometheus.CounterVec
	Probes      *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Applies     *prometheus.CounterVec

	HealthState        prometheus.Gauge
	EndpointsReachable prometheus.Gauge

	RoundDuration prometheus.Histogram
}

// New builds and registers the full collector set.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pingcheck_rounds_total",
			Help: "Monitoring rounds by result.",
		}, []string{"result"}),
		Probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pingcheck_probes_total",
			Help: "Individual endpoint probes by result.",
		}, []string{"result"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pingcheck_transitions_total",
			Help: "Health state transitions by destination state.",
		}, []string{"to"}),
		Applies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pingcheck_config_applies_total",
			Help: "Configuration apply attempts by result.",
		}, []string{"result"}),
		HealthState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pingcheck_health_state",
			Help: "Current health state (0 unknown, 1 good, 2 fail).",
		}),
		EndpointsReachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pingcheck_endpoints_reachable",
			Help: "Endpoints that answered in the last round.",
		}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pingcheck_round_duration_seconds",
			Help:    "Wall time of a full monitoring round.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.Rounds, m.Probes, m.Transitions, m.Applies,
		m.HealthState, m.EndpointsReachable, m.RoundDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
