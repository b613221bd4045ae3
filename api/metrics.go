package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	registry     *prometheus.Registry
	computations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mortgage",
			Name:      "schedule_computations_total",
			Help:      "Schedule computations by source and outcome.",
		}, []string{"source", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mortgage",
			Name:      "schedule_computation_seconds",
			Help:      "Time spent computing schedules.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"source"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mortgage",
			Name:      "schedule_cache_lookups_total",
			Help:      "Schedule cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.computations,
		m.duration,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// observeComputation records one computation. source is "schedule" for the
// stateless endpoint and "workspace" for stored mortgages.
func (m *Metrics) observeComputation(source string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if statusFor(err) == http.StatusBadRequest {
			outcome = "invalid"
		}
	}
	m.computations.WithLabelValues(source, outcome).Inc()
	m.duration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

func (m *Metrics) cacheHit()   { m.cacheLookups.WithLabelValues("hit").Inc() }
func (m *Metrics) cacheMiss()  { m.cacheLookups.WithLabelValues("miss").Inc() }
func (m *Metrics) cacheError() { m.cacheLookups.WithLabelValues("error").Inc() }
