package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"flightpulse/delaydash/internal/dataset"
)

// MetricsRegistry holds all Prometheus metrics for the dashboard service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Dataset Metrics
	DatasetRowsLoaded prometheus.GaugeVec

	// Aggregation Metrics
	AggregationsTotal   prometheus.Counter
	AggregationDuration prometheus.Histogram

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delaydash_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "delaydash_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "delaydash_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Dataset Metrics
		DatasetRowsLoaded: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "delaydash_dataset_rows_loaded",
				Help: "Rows loaded from the workbook, by sheet",
			},
			[]string{"sheet"},
		),

		// Aggregation Metrics
		AggregationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "delaydash_aggregations_total",
				Help: "Total filter/aggregate passes over the flights table",
			},
		),
		AggregationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "delaydash_aggregation_duration_seconds",
				Help:    "Filter/aggregate pass execution time in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delaydash_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delaydash_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
	}
}

// RecordDatasetLoad publishes the row counts for each loaded sheet
func (m *MetricsRegistry) RecordDatasetLoad(store *dataset.Store) {
	m.DatasetRowsLoaded.WithLabelValues("flights").Set(float64(len(store.Flights)))
	m.DatasetRowsLoaded.WithLabelValues("airports").Set(float64(len(store.Airports)))
	m.DatasetRowsLoaded.WithLabelValues("airlines").Set(float64(len(store.Airlines)))
	m.DatasetRowsLoaded.WithLabelValues("aircrafts").Set(float64(len(store.Aircraft)))
}
