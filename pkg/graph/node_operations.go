package graph

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/logging"
)

// AddNode creates a new node and inserts it into the spatial index. It always
// succeeds and returns the fresh node id.
func (g *TransportGraph) AddNode(position geom.Point, nodeType NodeType) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodeID := g.nextNodeID
	g.nextNodeID++

	g.nodes[nodeID] = &Node{
		ID:       nodeID,
		Position: position,
		Type:     nodeType,
		Edges:    make([]uint64, 0),
	}
	g.index.Insert(nodeID, position)

	atomic.AddUint64(&g.stats.NodeCount, 1)
	g.metrics.SetGraphSize(atomic.LoadUint64(&g.stats.NodeCount), atomic.LoadUint64(&g.stats.EdgeCount))

	return nodeID
}

// GetNode retrieves a node by ID, returning a copy the caller may freely
// mutate.
func (g *TransportGraph) GetNode(nodeID uint64) (*Node, error) {
	defer g.startQueryTiming()()

	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[nodeID]
	if !exists {
		return nil, ErrNodeNotFound
	}
	return node.Clone(), nil
}

// RemoveNode removes a node and all its incident edges. Removing an unknown
// id is a no-op: repeated and speculative deletes are routine during editing
// workflows.
func (g *TransportGraph) RemoveNode(nodeID uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, exists := g.nodes[nodeID]
	if !exists {
		return
	}

	// Cascade: incident edges first, so no edge ever outlives an endpoint.
	incident := make([]uint64, len(node.Edges))
	copy(incident, node.Edges)
	for _, edgeID := range incident {
		g.removeEdgeLocked(edgeID)
	}

	g.index.Remove(nodeID, node.Position)
	delete(g.nodes, nodeID)

	atomicDecrementWithUnderflowProtection(&g.stats.NodeCount)
	g.metrics.SetGraphSize(atomic.LoadUint64(&g.stats.NodeCount), atomic.LoadUint64(&g.stats.EdgeCount))
}

// SetNodeType retypes a node in place. Unknown ids are a no-op.
func (g *TransportGraph) SetNodeType(nodeID uint64, nodeType NodeType) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if node, exists := g.nodes[nodeID]; exists {
		node.Type = nodeType
	}
}

// SetNodePosition moves a node, relocating its spatial index membership and
// recomputing the length of every incident edge so lengths are never read
// stale.
func (g *TransportGraph) SetNodePosition(nodeID uint64, position geom.Point) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, exists := g.nodes[nodeID]
	if !exists {
		return ErrNodeNotFound
	}

	g.index.Move(nodeID, node.Position, position)
	node.Position = position

	for _, edgeID := range node.Edges {
		if edge, ok := g.edges[edgeID]; ok {
			edge.Length = g.edgeLengthLocked(edge)
		}
	}
	return nil
}

// FindNearestNode returns the closest node to position that admits mode,
// within maxDistance. The spatial index's home cell and 6 face-adjacent cells
// are probed first; when they hold no candidate, a full linear scan runs so
// sparse graphs still resolve, at higher latency.
func (g *TransportGraph) FindNearestNode(position geom.Point, mode Mode, maxDistance float64) (uint64, bool) {
	defer g.startQueryTiming()()

	g.mu.RLock()
	defer g.mu.RUnlock()

	if id, ok := g.nearestOf(g.index.NearbyIDs(position), position, mode, maxDistance); ok {
		return id, true
	}

	g.logger.Debug("spatial probe empty, falling back to full scan",
		logging.Mode(mode.String()),
		logging.Float64("max_distance", maxDistance),
	)
	return g.nearestFullScan(position, mode, maxDistance)
}

func (g *TransportGraph) nearestOf(candidates []uint64, position geom.Point, mode Mode, maxDistance float64) (uint64, bool) {
	bestID := uint64(0)
	bestDist := math.MaxFloat64
	for _, id := range candidates {
		node, exists := g.nodes[id]
		if !exists || !node.Modes.Has(mode) {
			continue
		}
		d := geom.Distance(position, node.Position)
		if d <= maxDistance && d < bestDist {
			bestID, bestDist = id, d
		}
	}
	return bestID, bestID != 0
}

func (g *TransportGraph) nearestFullScan(position geom.Point, mode Mode, maxDistance float64) (uint64, bool) {
	bestID := uint64(0)
	bestDist := math.MaxFloat64
	for id, node := range g.nodes {
		if !node.Modes.Has(mode) {
			continue
		}
		d := geom.Distance(position, node.Position)
		if d <= maxDistance && d < bestDist {
			bestID, bestDist = id, d
		}
	}
	return bestID, bestID != 0
}

// recomputeNodeModesLocked rebuilds a node's mode set as the union of its
// incident edges' modes. Called after edge removal; edge addition unions
// incrementally.
func (g *TransportGraph) recomputeNodeModesLocked(node *Node) {
	var modes ModeSet
	for _, edgeID := range node.Edges {
		if edge, ok := g.edges[edgeID]; ok {
			modes = modes.Union(edge.Modes)
		}
	}
	node.Modes = modes
}

// startQueryTiming begins query time tracking and returns a cleanup function.
// Usage: defer g.startQueryTiming()()
func (g *TransportGraph) startQueryTiming() func() {
	start := time.Now()
	return func() {
		g.trackQueryTime(time.Since(start))
	}
}
