package graph

import (
	"sync/atomic"
	"time"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/logging"
)

// AddEdge creates an edge between two existing nodes, applying the type
// defaults table for speed, capacity and allowed modes. Fails with
// ErrNodeNotFound when either endpoint is absent.
func (g *TransportGraph) AddEdge(startID, endID uint64, edgeType EdgeType) (uint64, error) {
	start := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	startNode, exists := g.nodes[startID]
	if !exists {
		g.metrics.RecordGraphOperation("AddEdge", "error", time.Since(start))
		return 0, NewError("AddEdge").Node(startID).Wrap(ErrNodeNotFound).Err()
	}
	endNode, exists := g.nodes[endID]
	if !exists {
		g.metrics.RecordGraphOperation("AddEdge", "error", time.Since(start))
		return 0, NewError("AddEdge").Node(endID).Wrap(ErrNodeNotFound).Err()
	}

	edgeID := g.nextEdgeID
	g.nextEdgeID++

	defaults := DefaultsFor(edgeType)
	edge := &Edge{
		ID:         edgeID,
		FromNodeID: startID,
		ToNodeID:   endID,
		Type:       edgeType,
		Modes:      defaults.Modes,
		BaseSpeed:  defaults.BaseSpeed,
		Capacity:   defaults.Capacity,
	}
	edge.Length = g.edgeLengthLocked(edge)

	g.edges[edgeID] = edge

	// Register with both endpoints; nodes never manage this themselves.
	startNode.Edges = append(startNode.Edges, edgeID)
	endNode.Edges = append(endNode.Edges, edgeID)
	startNode.Modes = startNode.Modes.Union(edge.Modes)
	endNode.Modes = endNode.Modes.Union(edge.Modes)

	atomic.AddUint64(&g.stats.EdgeCount, 1)
	g.metrics.SetGraphSize(atomic.LoadUint64(&g.stats.NodeCount), atomic.LoadUint64(&g.stats.EdgeCount))
	g.metrics.RecordGraphOperation("AddEdge", "ok", time.Since(start))

	return edgeID, nil
}

// GetEdge retrieves an edge by ID, returning a copy with an occupancy
// snapshot.
func (g *TransportGraph) GetEdge(edgeID uint64) (*Edge, error) {
	defer g.startQueryTiming()()

	g.mu.RLock()
	defer g.mu.RUnlock()

	edge, exists := g.edges[edgeID]
	if !exists {
		return nil, ErrEdgeNotFound
	}
	return edge.Clone(), nil
}

// RemoveEdge detaches an edge from both endpoints and deletes it. Removing an
// unknown id is a no-op.
func (g *TransportGraph) RemoveEdge(edgeID uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeEdgeLocked(edgeID)
}

func (g *TransportGraph) removeEdgeLocked(edgeID uint64) {
	edge, exists := g.edges[edgeID]
	if !exists {
		return
	}

	delete(g.edges, edgeID)

	for _, nodeID := range []uint64{edge.FromNodeID, edge.ToNodeID} {
		if node, ok := g.nodes[nodeID]; ok {
			node.Edges = removeIDFromList(node.Edges, edgeID)
			g.recomputeNodeModesLocked(node)
		}
	}

	atomicDecrementWithUnderflowProtection(&g.stats.EdgeCount)
	g.metrics.SetGraphSize(atomic.LoadUint64(&g.stats.NodeCount), atomic.LoadUint64(&g.stats.EdgeCount))
}

// EdgeBetween returns the id of an edge directly connecting a and b, in
// either orientation.
func (g *TransportGraph) EdgeBetween(a, b uint64) (uint64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[a]
	if !exists {
		return 0, false
	}
	for _, edgeID := range node.Edges {
		edge, ok := g.edges[edgeID]
		if !ok {
			continue
		}
		if other, ok := edge.OtherEnd(a); ok && other == b {
			return edgeID, true
		}
	}
	return 0, false
}

// SetEdgeControlPoints replaces an edge's polyline control points and
// recomputes its length so the two are never inconsistent.
func (g *TransportGraph) SetEdgeControlPoints(edgeID uint64, points []geom.Point) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	edge, exists := g.edges[edgeID]
	if !exists {
		return ErrEdgeNotFound
	}

	edge.ControlPoints = make([]geom.Point, len(points))
	copy(edge.ControlPoints, points)
	edge.Length = g.edgeLengthLocked(edge)
	return nil
}

// SetEdgeOneWay flags an edge as traversable only from its start node.
func (g *TransportGraph) SetEdgeOneWay(edgeID uint64, oneWay bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	edge, exists := g.edges[edgeID]
	if !exists {
		return ErrEdgeNotFound
	}
	edge.OneWay = oneWay
	return nil
}

// UpdateEdgeLengths recomputes every edge's length. Call after any bulk
// node-position mutation.
func (g *TransportGraph) UpdateEdgeLengths() {
	start := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, edge := range g.edges {
		edge.Length = g.edgeLengthLocked(edge)
	}

	g.metrics.RecordGraphOperation("UpdateEdgeLengths", "ok", time.Since(start))
	g.logger.Debug("edge lengths recomputed", logging.Count(len(g.edges)))
}

// edgeLengthLocked computes an edge's geometric length: the polyline through
// its control points when present, straight-line distance otherwise. Caller
// holds the graph lock.
func (g *TransportGraph) edgeLengthLocked(edge *Edge) float64 {
	from, fromOK := g.nodes[edge.FromNodeID]
	to, toOK := g.nodes[edge.ToNodeID]
	if !fromOK || !toOK {
		return edge.Length
	}

	if len(edge.ControlPoints) == 0 {
		return geom.Distance(from.Position, to.Position)
	}

	polyline := make([]geom.Point, 0, len(edge.ControlPoints)+2)
	polyline = append(polyline, from.Position)
	polyline = append(polyline, edge.ControlPoints...)
	polyline = append(polyline, to.Position)
	return geom.PolylineLength(polyline)
}

// removeIDFromList removes the first occurrence of id, preserving order.
func removeIDFromList(list []uint64, id uint64) []uint64 {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
