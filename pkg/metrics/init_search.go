package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSearchMetrics() {
	r.SearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityroute_searches_total",
			Help: "Total number of pathfinding searches",
		},
		[]string{"mode", "status"},
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityroute_search_duration_seconds",
			Help:    "Pathfinding search duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"mode"},
	)

	r.SearchNodesExpanded = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cityroute_search_nodes_expanded",
			Help:    "Nodes expanded per pathfinding search",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		},
	)
}
