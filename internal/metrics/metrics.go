// Package metrics defines Prometheus metrics for graphfeed.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphfeed_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphfeed_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphfeed_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphfeed_jobs_total",
			Help: "Total sampling jobs by kind and terminal state",
		},
		[]string{"kind", "state"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphfeed_job_duration_seconds",
			Help:    "Sampling job duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 1800},
		},
		[]string{"kind"},
	)

	RowsStreamed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphfeed_rows_streamed_total",
			Help: "Total data rows delivered to consumers",
		},
		[]string{"kind"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphfeed_supernode_cache_hits_total",
			Help: "Hop expansions served from the supernode adjacency cache",
		},
	)

	SupernodesCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphfeed_supernodes_cached",
			Help: "Supernodes materialized by the most recent k-hop job",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphfeed_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		JobsTotal, JobDuration, RowsStreamed,
		CacheHits, SupernodesCached,
		WSConnections,
	)
}
