package journey

import (
	"sync"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
)

// Leg is one single-mode segment of a journey. EdgeIDs lists the graph edges
// the leg traverses; walk legs off the network carry none.
type Leg struct {
	Start   geom.Point
	End     geom.Point
	Mode    graph.Mode
	EdgeIDs []uint64
}

// Length returns the straight-line length of the leg.
func (l Leg) Length() float64 {
	return geom.Distance(l.Start, l.End)
}

// journeyState tracks the occupancy lifecycle.
type journeyState int

const (
	statePlanned journeyState = iota
	stateActive
	stateDone
)

// Journey is a planned trip. Starting it registers the traveler on every
// traversed edge, feeding congestion back into later searches; finishing or
// abandoning it releases them again.
type Journey struct {
	ID   string
	Legs []Leg

	graph *graph.TransportGraph
	mu    sync.Mutex
	state journeyState
}

// TotalDistance returns the summed leg lengths.
func (j *Journey) TotalDistance() float64 {
	total := 0.0
	for _, leg := range j.Legs {
		total += leg.Length()
	}
	return total
}

// IsDirectWalk reports whether the journey never touches the network.
func (j *Journey) IsDirectWalk() bool {
	for _, leg := range j.Legs {
		if len(leg.EdgeIDs) > 0 {
			return false
		}
	}
	return true
}

// Start increments occupancy on every edge the journey traverses. Calling it
// more than once is a no-op.
func (j *Journey) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != statePlanned {
		return
	}
	j.state = stateActive

	for _, leg := range j.Legs {
		for _, edgeID := range leg.EdgeIDs {
			_ = j.graph.EnterEdge(edgeID)
		}
	}
}

// Finish releases the journey's occupancy. Safe to call on a journey that
// was never started.
func (j *Journey) Finish() {
	j.release()
}

// Abandon releases occupancy for a journey cut short. Identical bookkeeping
// to Finish; the distinction is for callers and logs.
func (j *Journey) Abandon() {
	j.release()
}

func (j *Journey) release() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != stateActive {
		j.state = stateDone
		return
	}
	j.state = stateDone

	for _, leg := range j.Legs {
		for _, edgeID := range leg.EdgeIDs {
			j.graph.LeaveEdge(edgeID)
		}
	}
}
