package graph

import (
	"sync/atomic"

	"github.com/urbanflow/cityroute/pkg/geom"
)

// NodeType classifies a graph node.
type NodeType uint8

const (
	NodeIntersection NodeType = iota
	NodeRoadPoint
	NodeEntryPoint
	NodeTransitStop
	NodeTransferPoint
)

// String returns the string representation of a node type
func (t NodeType) String() string {
	switch t {
	case NodeIntersection:
		return "intersection"
	case NodeRoadPoint:
		return "road_point"
	case NodeEntryPoint:
		return "entry_point"
	case NodeTransitStop:
		return "transit_stop"
	case NodeTransferPoint:
		return "transfer_point"
	default:
		return "unknown"
	}
}

// EdgeType classifies a graph edge. Each type carries default speed,
// capacity and allowed modes, assigned at edge creation.
type EdgeType uint8

const (
	EdgeRoad EdgeType = iota
	EdgeSidewalk
	EdgeBusRoute
	EdgeTrainRoute
	EdgeBikeLane
	EdgeCrosswalk
)

// String returns the string representation of an edge type
func (t EdgeType) String() string {
	switch t {
	case EdgeRoad:
		return "road"
	case EdgeSidewalk:
		return "sidewalk"
	case EdgeBusRoute:
		return "bus_route"
	case EdgeTrainRoute:
		return "train_route"
	case EdgeBikeLane:
		return "bike_lane"
	case EdgeCrosswalk:
		return "crosswalk"
	default:
		return "unknown"
	}
}

// Mode is a transport mode an agent can travel by.
type Mode uint8

const (
	ModeWalking Mode = iota
	ModeDriving
	ModeBiking
	ModeTransit
)

// String returns the string representation of a mode
func (m Mode) String() string {
	switch m {
	case ModeWalking:
		return "walking"
	case ModeDriving:
		return "driving"
	case ModeBiking:
		return "biking"
	case ModeTransit:
		return "transit"
	default:
		return "unknown"
	}
}

// ModeSet is a bitmask set of transport modes.
type ModeSet uint8

// NewModeSet builds a set from the given modes.
func NewModeSet(modes ...Mode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s = s.Add(m)
	}
	return s
}

// Add returns the set with m included.
func (s ModeSet) Add(m Mode) ModeSet {
	return s | (1 << m)
}

// Has reports whether m is in the set.
func (s ModeSet) Has(m Mode) bool {
	return s&(1<<m) != 0
}

// Union returns the combination of both sets.
func (s ModeSet) Union(o ModeSet) ModeSet {
	return s | o
}

// Empty reports whether the set contains no modes.
func (s ModeSet) Empty() bool {
	return s == 0
}

// Modes returns the set's members in declaration order.
func (s ModeSet) Modes() []Mode {
	modes := make([]Mode, 0, 4)
	for _, m := range []Mode{ModeWalking, ModeDriving, ModeBiking, ModeTransit} {
		if s.Has(m) {
			modes = append(modes, m)
		}
	}
	return modes
}

// Node represents a location agents can occupy. Incident edge ids are kept in
// insertion order; the order is discovery order, not semantically
// significant. The incident set is maintained by the graph exclusively.
type Node struct {
	ID       uint64
	Position geom.Point
	Type     NodeType
	Modes    ModeSet
	Edges    []uint64
}

// Clone creates a deep copy of a node
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:       n.ID,
		Position: n.Position,
		Type:     n.Type,
		Modes:    n.Modes,
		Edges:    make([]uint64, len(n.Edges)),
	}
	copy(clone.Edges, n.Edges)
	return clone
}

// Edge connects two nodes. Directionality is informational unless OneWay is
// set. Occupancy is read and written atomically and may transiently exceed
// Capacity; congestion level clamps at 1 for cost purposes.
type Edge struct {
	ID            uint64
	FromNodeID    uint64
	ToNodeID      uint64
	Type          EdgeType
	Modes         ModeSet
	BaseSpeed     float64
	Capacity      int64
	Occupancy     int64
	OneWay        bool
	Length        float64
	ControlPoints []geom.Point
}

// Clone creates a deep copy of an edge with an atomic occupancy snapshot
func (e *Edge) Clone() *Edge {
	clone := &Edge{
		ID:         e.ID,
		FromNodeID: e.FromNodeID,
		ToNodeID:   e.ToNodeID,
		Type:       e.Type,
		Modes:      e.Modes,
		BaseSpeed:  e.BaseSpeed,
		Capacity:   e.Capacity,
		Occupancy:  atomic.LoadInt64(&e.Occupancy),
		OneWay:     e.OneWay,
		Length:     e.Length,
	}
	if len(e.ControlPoints) > 0 {
		clone.ControlPoints = make([]geom.Point, len(e.ControlPoints))
		copy(clone.ControlPoints, e.ControlPoints)
	}
	return clone
}

// CongestionLevel returns occupancy/capacity clamped to [0,1].
func (e *Edge) CongestionLevel() float64 {
	if e.Capacity <= 0 {
		return 0
	}
	level := float64(atomic.LoadInt64(&e.Occupancy)) / float64(e.Capacity)
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}

// CurrentSpeed returns the congestion-degraded speed: free flow at zero
// congestion, SpeedFloorFactor of free flow at full congestion.
func (e *Edge) CurrentSpeed() float64 {
	return geom.Lerp(e.BaseSpeed, e.BaseSpeed*SpeedFloorFactor, e.CongestionLevel())
}

// TravelTime returns the edge traversal time in seconds at current
// congestion.
func (e *Edge) TravelTime() float64 {
	speed := e.CurrentSpeed()
	if speed <= 0 {
		return 0
	}
	return e.Length / speed
}

// OtherEnd returns the endpoint opposite to nodeID. The second return is
// false when nodeID is not an endpoint of this edge.
func (e *Edge) OtherEnd(nodeID uint64) (uint64, bool) {
	switch nodeID {
	case e.FromNodeID:
		return e.ToNodeID, true
	case e.ToNodeID:
		return e.FromNodeID, true
	default:
		return 0, false
	}
}

// Statistics holds graph counters.
type Statistics struct {
	NodeCount    uint64
	EdgeCount    uint64
	TotalQueries uint64
	AvgQueryTime float64 // milliseconds, exponential moving average
}

// TopicCongestion is the pubsub topic for congestion threshold events.
const TopicCongestion = "congestion.threshold"

// CongestionEvent is published when an edge's congestion level transitions
// past CongestionThreshold. Informational only: cost lookups are pull-based
// and never depend on delivery.
type CongestionEvent struct {
	EdgeID uint64
	Level  float64
	Rising bool
}
