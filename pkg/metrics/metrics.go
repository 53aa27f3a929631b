package metrics

import (
	"time"
)

// RecordGraphOperation records a graph operation with its duration.
func (r *Registry) RecordGraphOperation(operation, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.GraphOperationsTotal.WithLabelValues(operation, status).Inc()
	r.GraphOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetGraphSize updates the node and edge count gauges.
func (r *Registry) SetGraphSize(nodes, edges uint64) {
	if r == nil {
		return
	}
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// RecordCongestionCrossing records a congestion level transition past the
// notification threshold, rising or falling.
func (r *Registry) RecordCongestionCrossing(rising bool) {
	if r == nil {
		return
	}
	direction := "falling"
	if rising {
		direction = "rising"
	}
	r.CongestionCrossings.WithLabelValues(direction).Inc()
}

// RecordSearch records a pathfinding search.
func (r *Registry) RecordSearch(mode, status string, duration time.Duration, expanded int) {
	if r == nil {
		return
	}
	r.SearchesTotal.WithLabelValues(mode, status).Inc()
	r.SearchDuration.WithLabelValues(mode).Observe(duration.Seconds())
	r.SearchNodesExpanded.Observe(float64(expanded))
}

// RecordJourney records a planned journey. kind distinguishes network routes
// from direct-walk fallbacks.
func (r *Registry) RecordJourney(kind string, legs int) {
	if r == nil {
		return
	}
	r.JourneysTotal.WithLabelValues(kind).Inc()
	r.JourneyLegs.Observe(float64(legs))
}

// RecordBuild records a completed road geometry build.
func (r *Registry) RecordBuild(duration time.Duration, roads, crossings, skipped int) {
	if r == nil {
		return
	}
	r.BuildsTotal.Inc()
	r.BuildDuration.Observe(duration.Seconds())
	r.BuildRoadsTotal.Add(float64(roads))
	r.BuildCrossings.Add(float64(crossings))
	r.BuildSkippedRoads.Add(float64(skipped))
}
