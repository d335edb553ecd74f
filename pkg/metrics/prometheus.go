package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	softFailures *prometheus.CounterVec
	lastIndex    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexforge_fetches_total",
				Help: "Total number of upstream fetch attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexforge_cache_lookups_total",
				Help: "Total number of cache lookups by state",
			},
			[]string{"state"},
		),
		softFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexforge_soft_failures_total",
				Help: "Total number of degraded responses by pipeline step",
			},
			[]string{"step"},
		),
		lastIndex: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexforge_last_index_value",
				Help: "Last computed value for a series",
			},
			[]string{"series"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexforge_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records the outcome of an upstream fetch.
func (r *Recorder) RecordFetch(provider, outcome string) {
	r.fetchesTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordCacheLookup records a cache lookup state.
func (r *Recorder) RecordCacheLookup(state string) {
	r.cacheLookups.WithLabelValues(state).Inc()
}

// RecordSoftFailure records a degraded response for a pipeline step.
func (r *Recorder) RecordSoftFailure(step string) {
	r.softFailures.WithLabelValues(step).Inc()
}

// RecordIndexValue records the latest value of a computed series.
func (r *Recorder) RecordIndexValue(series string, value float64) {
	r.lastIndex.WithLabelValues(series).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
