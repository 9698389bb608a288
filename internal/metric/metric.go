// Package metric holds the Prometheus instruments for resolution and extraction.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution outcomes
const (
	OutcomeHit      = "hit"
	OutcomeFound    = "found"
	OutcomeMiss     = "miss"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeRelation = "relation"
	OutcomeNone     = "none"
)

// Metrics contains nifrel metrics on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	Resolutions     *prometheus.CounterVec
	RemoteRequests  *prometheus.CounterVec
	RemoteDuration  prometheus.Histogram
	CacheEntries    prometheus.Gauge
	CacheFlushes    *prometheus.CounterVec
	Extractions     *prometheus.CounterVec
	ExtractDuration prometheus.Histogram
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nifrel",
				Subsystem: "resolve",
				Name:      "total",
				Help:      "Wiki ID resolutions by outcome (hit, found, miss, invalid, error)",
			},
			[]string{"outcome"},
		),

		RemoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nifrel",
				Subsystem: "endpoint",
				Name:      "requests_total",
				Help:      "SPARQL endpoint requests by HTTP status class",
			},
			[]string{"status"},
		),

		RemoteDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "nifrel",
				Subsystem: "endpoint",
				Name:      "request_duration_seconds",
				Help:      "SPARQL endpoint request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "nifrel",
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Number of references in the identifier cache",
			},
		),

		CacheFlushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nifrel",
				Subsystem: "cache",
				Name:      "flushes_total",
				Help:      "Identifier cache flushes by result",
			},
			[]string{"result"},
		),

		Extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nifrel",
				Subsystem: "extract",
				Name:      "documents_total",
				Help:      "Processed documents by outcome (relation, none, error)",
			},
			[]string{"outcome"},
		),

		ExtractDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "nifrel",
				Subsystem: "extract",
				Name:      "duration_seconds",
				Help:      "Per-document extraction duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
	}

	m.Registry.MustRegister(
		m.Resolutions,
		m.RemoteRequests,
		m.RemoteDuration,
		m.CacheEntries,
		m.CacheFlushes,
		m.Extractions,
		m.ExtractDuration,
	)

	return m
}

// ObserveResolution counts a resolution outcome. Safe on a nil receiver.
func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// ObserveRemote records one endpoint request. Safe on a nil receiver.
func (m *Metrics) ObserveRemote(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RemoteRequests.WithLabelValues(status).Inc()
	m.RemoteDuration.Observe(elapsed.Seconds())
}

// SetCacheEntries updates the cache size gauge. Safe on a nil receiver.
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

// ObserveFlush counts a flush result. Safe on a nil receiver.
func (m *Metrics) ObserveFlush(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CacheFlushes.WithLabelValues(result).Inc()
}

// ObserveExtraction records one processed document. Safe on a nil receiver.
func (m *Metrics) ObserveExtraction(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
	m.ExtractDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StatusClass maps an HTTP status code to a label such as "2xx"
func StatusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "error"
	}
}
