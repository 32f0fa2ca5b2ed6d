// Package metrics exposes the Prometheus instrumentation for KektorGraph.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global metric variables, registered through promauto so no explicit
// initialization step is needed.

var (
	// HTTP request counter, labeled by method, path, and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Traversals executed, labeled by the terminal that drained them.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_queries_total",
			Help: "Total number of graph traversals executed",
		},
		[]string{"surface"},
	)

	// Traversal wall time, from first pull to drained.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_query_duration_seconds",
			Help:    "Duration of graph traversals in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
		},
		[]string{"surface"},
	)

	// Store contents after bulk load, by label.
	TotalVertices = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kektorgraph_vertices_total",
			Help: "Number of vertices in the store",
		},
		[]string{"label"},
	)

	TotalEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kektorgraph_edges_total",
			Help: "Number of edges in the store",
		},
		[]string{"label"},
	)
)
