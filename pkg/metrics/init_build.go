package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.BuildsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "cityroute_builds_total",
			Help: "Total number of road geometry builds",
		},
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cityroute_build_duration_seconds",
			Help:    "Road geometry build duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.BuildRoadsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "cityroute_build_roads_total",
			Help: "Roads processed across all builds",
		},
	)

	r.BuildCrossings = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "cityroute_build_crossings_total",
			Help: "Road crossings detected across all builds",
		},
	)

	r.BuildSkippedRoads = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "cityroute_build_skipped_roads_total",
			Help: "Roads skipped as degenerate geometry",
		},
	)
}
