package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cityroute_graph_nodes_total",
			Help: "Total number of nodes in the transport graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cityroute_graph_edges_total",
			Help: "Total number of edges in the transport graph",
		},
	)

	r.GraphOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityroute_graph_operations_total",
			Help: "Total number of graph mutation and query operations",
		},
		[]string{"operation", "status"},
	)

	r.GraphOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityroute_graph_operation_duration_seconds",
			Help:    "Graph operation duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"operation"},
	)

	r.CongestionCrossings = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityroute_congestion_threshold_crossings_total",
			Help: "Edge congestion level transitions past the notification threshold",
		},
		[]string{"direction"},
	)
}
