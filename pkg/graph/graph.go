package graph

import (
	"sync"

	"github.com/urbanflow/cityroute/pkg/logging"
	"github.com/urbanflow/cityroute/pkg/metrics"
	"github.com/urbanflow/cityroute/pkg/pubsub"
	"github.com/urbanflow/cityroute/pkg/spatial"
)

// Config carries optional TransportGraph collaborators. Zero values are
// replaced with defaults (nop logger, no events, no metrics).
type Config struct {
	CellSize float64
	Logger   logging.Logger
	Events   *pubsub.PubSub
	Metrics  *metrics.Registry
}

// TransportGraph owns all Node and Edge records. Nodes and edges are
// referenced by stable uint64 ids, never by address, so removal cannot dangle
// live references. Structural mutation and pathfinding reads are expected to
// be serialized by the host; occupancy counters alone may change concurrently
// with reads.
type TransportGraph struct {
	mu    sync.RWMutex
	nodes map[uint64]*Node
	edges map[uint64]*Edge

	nextNodeID uint64
	nextEdgeID uint64

	index   *spatial.GridIndex
	events  *pubsub.PubSub
	logger  logging.Logger
	metrics *metrics.Registry

	stats            Statistics
	avgQueryTimeBits uint64
}

// New creates a transport graph with default configuration.
func New() *TransportGraph {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a transport graph with the given collaborators.
func NewWithConfig(cfg Config) *TransportGraph {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TransportGraph{
		nodes:      make(map[uint64]*Node),
		edges:      make(map[uint64]*Edge),
		nextNodeID: 1,
		nextEdgeID: 1,
		index:      spatial.NewGridIndex(cfg.CellSize),
		events:     cfg.Events,
		logger:     logger.With(logging.Component("graph")),
		metrics:    cfg.Metrics,
	}
}

// Index exposes the spatial index for collaborators that need raw proximity
// queries beyond FindNearestNode.
func (g *TransportGraph) Index() *spatial.GridIndex {
	return g.index
}

// Clear removes every node and edge. Callers must hold exclusive access: a
// rebuild is not safe to interleave with any concurrent read.
func (g *TransportGraph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[uint64]*Node)
	g.edges = make(map[uint64]*Edge)
	g.nextNodeID = 1
	g.nextEdgeID = 1
	g.index.Clear()
	g.stats.NodeCount = 0
	g.stats.EdgeCount = 0

	g.metrics.SetGraphSize(0, 0)
	g.logger.Info("graph cleared")
}
