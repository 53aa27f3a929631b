package graph

import (
	"sync/atomic"

	"github.com/urbanflow/cityroute/pkg/logging"
)

// EnterEdge increments an edge's occupancy. Occupancy may transiently exceed
// capacity; congestion level clamps for cost purposes. Concurrent callers are
// safe: the counter is a single atomically-updated integer.
func (g *TransportGraph) EnterEdge(edgeID uint64) error {
	g.mu.RLock()
	edge, exists := g.edges[edgeID]
	g.mu.RUnlock()
	if !exists {
		return ErrEdgeNotFound
	}

	before := edge.CongestionLevel()
	atomic.AddInt64(&edge.Occupancy, 1)
	after := edge.CongestionLevel()

	g.notifyCongestionChange(edge, before, after)
	return nil
}

// LeaveEdge decrements an edge's occupancy, clamping at zero. Unknown edges
// are a no-op so abandoning a journey whose edges were since removed never
// fails.
func (g *TransportGraph) LeaveEdge(edgeID uint64) {
	g.mu.RLock()
	edge, exists := g.edges[edgeID]
	g.mu.RUnlock()
	if !exists {
		return
	}

	before := edge.CongestionLevel()
	// CAS loop so concurrent leaves cannot drive occupancy below zero.
	for {
		current := atomic.LoadInt64(&edge.Occupancy)
		if current <= 0 {
			return
		}
		if atomic.CompareAndSwapInt64(&edge.Occupancy, current, current-1) {
			break
		}
	}
	after := edge.CongestionLevel()

	g.notifyCongestionChange(edge, before, after)
}

// EdgeTravelTime returns an edge's traversal time in seconds at its current
// congestion level.
func (g *TransportGraph) EdgeTravelTime(edgeID uint64) (float64, error) {
	g.mu.RLock()
	edge, exists := g.edges[edgeID]
	g.mu.RUnlock()
	if !exists {
		return 0, ErrEdgeNotFound
	}
	return edge.TravelTime(), nil
}

// notifyCongestionChange publishes a CongestionEvent when the congestion
// level transitions past CongestionThreshold in either direction. Delivery is
// best-effort; pathfinding cost lookups never depend on it.
func (g *TransportGraph) notifyCongestionChange(edge *Edge, before, after float64) {
	wasCongested := before >= CongestionThreshold
	isCongested := after >= CongestionThreshold
	if wasCongested == isCongested {
		return
	}

	g.metrics.RecordCongestionCrossing(isCongested)
	g.logger.Debug("edge congestion threshold crossed",
		logging.EdgeID(edge.ID),
		logging.Float64("level", after),
		logging.Bool("rising", isCongested),
	)

	if g.events != nil {
		g.events.Publish(TopicCongestion, CongestionEvent{
			EdgeID: edge.ID,
			Level:  after,
			Rising: isCongested,
		})
	}
}
