package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the collectors exposed on /metrics.
type Metrics struct {
	registry    *prometheus.Registry
	comparisons *prometheus.CounterVec
	duration    prometheus.Histogram
	accounts    *prometheus.CounterVec
}

// NewMetrics registers the server collectors on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerdiff",
			Name:      "comparisons_total",
			Help:      "Number of comparison requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerdiff",
			Name:      "comparison_duration_seconds",
			Help:      "Time spent reading and comparing uploaded workbooks.",
			Buckets:   prometheus.DefBuckets,
		}),
		accounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerdiff",
			Name:      "accounts_total",
			Help:      "Number of accounts classified by comparisons.",
		}, []string{"partition"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.comparisons,
		m.duration,
		m.accounts,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observe(status int, seconds float64) {
	m.comparisons.WithLabelValues(outcome(status)).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) count(settled, added, continuing int) {
	m.accounts.WithLabelValues("settled").Add(float64(settled))
	m.accounts.WithLabelValues("new").Add(float64(added))
	m.accounts.WithLabelValues("continuing").Add(float64(continuing))
}
