// Package metrics exposes Prometheus collectors for the auth flows and the
// credential store.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authgate"

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	failovers    *prometheus.CounterVec
	authOutcomes *prometheus.CounterVec
	storeUp      prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		failovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "failovers_total",
			Help:      "Store operations served by the in-memory store after a durable store failure.",
		}, []string{"operation"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Results of register, login and verify flows.",
		}, []string{"flow", "outcome"}),
		storeUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "durable_up",
			Help:      "1 when the durable store answered the last health probe.",
		}),
	}

	m.registry.MustRegister(
		m.failovers,
		m.authOutcomes,
		m.storeUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordFailover counts an operation that fell back to the in-memory store.
func (m *Metrics) RecordFailover(operation string) {
	m.failovers.WithLabelValues(operation).Inc()
}

// RecordAuthOutcome counts a finished auth flow.
func (m *Metrics) RecordAuthOutcome(flow, outcome string) {
	m.authOutcomes.WithLabelValues(flow, outcome).Inc()
}

// SetDurableStoreUp records the result of a durable store probe.
func (m *Metrics) SetDurableStoreUp(up bool) {
	if up {
		m.storeUp.Set(1)
		return
	}
	m.storeUp.Set(0)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
