// Package pathfind implements mode-aware A* search over the transport graph.
// Edge costs are live travel times, so congestion raises cost and the search
// routes around crowded edges without special-casing.
package pathfind

import (
	"container/heap"
	"math"
	"time"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/metrics"
)

// Finder runs A* searches against a transport graph. Search state lives in a
// per-call scratch map, so concurrent searches against a structurally stable
// graph are safe; only occupancy counters may change underneath, which skews
// costs but never corrupts a search.
type Finder struct {
	graph    *graph.TransportGraph
	metrics  *metrics.Registry
	maxSpeed float64
}

// New creates a Finder for the given graph.
func New(g *graph.TransportGraph) *Finder {
	return &Finder{
		graph:    g,
		maxSpeed: graph.MaxBaseSpeed(),
	}
}

// NewWithMetrics creates a Finder that records search metrics.
func NewWithMetrics(g *graph.TransportGraph, m *metrics.Registry) *Finder {
	f := New(g)
	f.metrics = m
	return f
}

// searchState is per-node scratch, allocated fresh for every search.
type searchState struct {
	gScore   float64
	hScore   float64
	cameFrom uint64 // 0 = none; node ids start at 1
	closed   bool
}

// frontierItem is a heap entry. Superseded entries are skipped lazily on pop
// via the closed flag.
type frontierItem struct {
	nodeID uint64
	fScore float64
	hScore float64
}

// frontier orders by f-score; equal f-scores prefer the lower h-score
// (closer to goal).
type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].fScore != f[j].fScore {
		return f[i].fScore < f[j].fScore
	}
	return f[i].hScore < f[j].hScore
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) {
	*f = append(*f, x.(frontierItem))
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// FindPath returns the node sequence from startID to endID (inclusive) for
// the given mode, or an empty sequence when no path exists. Exhausting the
// search is not an error; the caller decides fallback behavior. Unknown node
// ids are reported as errors.
func (f *Finder) FindPath(startID, endID uint64, mode graph.Mode) ([]uint64, error) {
	started := time.Now()

	startNode, err := f.graph.GetNode(startID)
	if err != nil {
		f.metrics.RecordSearch(mode.String(), "error", time.Since(started), 0)
		return nil, err
	}
	endNode, err := f.graph.GetNode(endID)
	if err != nil {
		f.metrics.RecordSearch(mode.String(), "error", time.Since(started), 0)
		return nil, err
	}

	if startID == endID {
		f.metrics.RecordSearch(mode.String(), "found", time.Since(started), 0)
		return []uint64{startID}, nil
	}

	states := make(map[uint64]*searchState)
	h0 := f.heuristic(startNode, endNode)
	states[startID] = &searchState{gScore: 0, hScore: h0}

	open := &frontier{{nodeID: startID, fScore: h0, hScore: h0}}
	heap.Init(open)

	expanded := 0
	for open.Len() > 0 {
		item := heap.Pop(open).(frontierItem)
		current := states[item.nodeID]
		if current.closed {
			continue // superseded entry
		}
		current.closed = true
		expanded++

		if item.nodeID == endID {
			path := reconstructPath(states, startID, endID)
			f.metrics.RecordSearch(mode.String(), "found", time.Since(started), expanded)
			return path, nil
		}

		edges, err := f.graph.IncidentEdges(item.nodeID)
		if err != nil {
			continue
		}

		for _, edge := range edges {
			// Inadmissible edges are skipped entirely, not penalized
			if !edge.Modes.Has(mode) {
				continue
			}
			if edge.OneWay && edge.FromNodeID != item.nodeID {
				continue
			}
			neighborID, ok := edge.OtherEnd(item.nodeID)
			if !ok {
				continue
			}

			tentative := current.gScore + edge.TravelTime()

			neighbor, seen := states[neighborID]
			if !seen {
				neighborNode, err := f.graph.GetNode(neighborID)
				if err != nil {
					continue
				}
				neighbor = &searchState{
					gScore: math.MaxFloat64,
					hScore: f.heuristic(neighborNode, endNode),
				}
				states[neighborID] = neighbor
			}

			if neighbor.closed || tentative >= neighbor.gScore {
				continue
			}

			neighbor.gScore = tentative
			neighbor.cameFrom = item.nodeID
			heap.Push(open, frontierItem{
				nodeID: neighborID,
				fScore: tentative + neighbor.hScore,
				hScore: neighbor.hScore,
			})
		}
	}

	f.metrics.RecordSearch(mode.String(), "not_found", time.Since(started), expanded)
	return nil, nil
}

// heuristic estimates remaining travel time as straight-line distance at the
// fastest base speed in the network. Admissible under free flow; congestion
// can raise real costs above it, which is an accepted approximation.
func (f *Finder) heuristic(from, to *graph.Node) float64 {
	return geom.Distance(from.Position, to.Position) / f.maxSpeed
}

// reconstructPath walks the cameFrom chain from end back to start.
func reconstructPath(states map[uint64]*searchState, startID, endID uint64) []uint64 {
	path := make([]uint64, 0)
	node := endID
	for node != startID {
		path = append(path, node)
		node = states[node].cameFrom
	}
	path = append(path, startID)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
