// Package metrics exposes Prometheus counters and gauges for the
// concerns an operator cares about: upstream feed health, circuit
// breaker state, and snapshot fallback mode. None of this feeds
// back into the assembler's own logic — it sits beside it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and every metric this service exposes.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamFetchTotal    *prometheus.CounterVec
	CircuitBreakerState   *prometheus.GaugeVec
	SnapshotFallbackTotal *prometheus.CounterVec
	SnapshotBuildDuration *prometheus.HistogramVec
}

// New builds a Metrics instance with its own registry, so this service's
// exposition never mixes with any other process's default registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.UpstreamFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ferry",
			Name:      "upstream_fetch_total",
			Help:      "Outcomes of upstream feed fetches, by feed and outcome.",
		},
		[]string{"feed", "outcome"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ferry",
			Name:      "circuit_breaker_state",
			Help:      "Current circuit breaker state per feed (0=closed, 1=half-open, 2=open).",
		},
		[]string{"feed"},
	)

	m.SnapshotFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ferry",
			Name:      "snapshot_fallback_total",
			Help:      "Count of assembled snapshots by fallback mode.",
		},
		[]string{"mode"},
	)

	m.SnapshotBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ferry",
			Name:      "snapshot_build_duration_seconds",
			Help:      "Time to assemble one snapshot.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"route_id"},
	)

	registry.MustRegister(m.UpstreamFetchTotal, m.CircuitBreakerState, m.SnapshotFallbackTotal, m.SnapshotBuildDuration)
	return m
}

// Handler exposes the Prometheus text exposition format for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BreakerStateValue maps gobreaker's state names onto the gauge scale
// CircuitBreakerState uses: closed=0, half-open=1, open=2.
func BreakerStateValue(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
