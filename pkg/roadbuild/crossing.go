package roadbuild

import (
	"math"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/logging"
)

// FindRoadIntersection returns the crossing point of two roads, or false when
// their centerlines do not cross or the crossing falls outside either road's
// half-width. The result is symmetric in argument order.
func FindRoadIntersection(a, b geom.Road) (geom.Point, bool) {
	point, ok := geom.SegmentIntersection2D(a.Start(), a.End(), b.Start(), b.End())
	if !ok {
		return geom.Point{}, false
	}
	if geom.PerpendicularDistance2D(point, a.Start(), a.End()) > a.Width/2 {
		return geom.Point{}, false
	}
	if geom.PerpendicularDistance2D(point, b.Start(), b.End()) > b.Width/2 {
		return geom.Point{}, false
	}
	return point, true
}

// connectCrossings runs crossing detection over every unordered road pair and
// inserts an intersection node for each accepted crossing. Returns the number
// of crossings inserted.
func (b *Builder) connectCrossings(roads []geom.Road, sequences [][]uint64) int {
	crossings := 0
	for i := 0; i < len(roads); i++ {
		if len(sequences[i]) == 0 {
			continue
		}
		for j := i + 1; j < len(roads); j++ {
			if len(sequences[j]) == 0 {
				continue
			}
			point, ok := FindRoadIntersection(roads[i], roads[j])
			if !ok {
				continue
			}
			b.insertCrossing(point, roads, sequences, i, j)
			crossings++
		}
	}
	return crossings
}

// insertCrossing attaches the crossing point to both roads. Each road either
// snaps the crossing onto its nearest existing node or splices a new
// intersection node into its sequence. When the two roads end up on distinct
// nodes (e.g. both snapped), a joining edge is added so the crossing actually
// connects them.
func (b *Builder) insertCrossing(point geom.Point, roads []geom.Road, sequences [][]uint64, i, j int) {
	idA := b.attachCrossing(point, roads[i], sequences, i, 0)
	idB := b.attachCrossing(point, roads[j], sequences, j, idA)

	if idA != idB {
		if _, exists := b.graph.EdgeBetween(idA, idB); !exists {
			if _, err := b.graph.AddEdge(idA, idB, graph.EdgeRoad); err != nil {
				b.logger.Warn("crossing join edge rejected", logging.Error(err))
			}
		}
	}
}

// attachCrossing merges or splices the crossing into one road's node sequence
// and returns the node id representing the crossing on that road. A non-zero
// reuse id (from the other road's attachment) is spliced in instead of
// creating a second node at the same point.
func (b *Builder) attachCrossing(point geom.Point, road geom.Road, sequences [][]uint64, roadIdx int, reuse uint64) uint64 {
	seq := sequences[roadIdx]

	nearest, nearestDist := b.nearestInSequence(seq, point)
	if nearestDist <= b.settings.SnapTolerance {
		b.graph.SetNodeType(nearest, graph.NodeIntersection)
		return nearest
	}

	crossing := reuse
	if crossing == 0 {
		crossing = b.graph.AddNode(point, graph.NodeIntersection)
	}

	// The crossing lies on the centerline, so its along-road coordinate
	// places it between a unique consecutive pair.
	idx := b.spliceIndex(seq, road, point)
	before, after := seq[idx], seq[idx+1]

	if edgeID, ok := b.graph.EdgeBetween(before, after); ok {
		b.graph.RemoveEdge(edgeID)
	}
	if _, err := b.graph.AddEdge(before, crossing, graph.EdgeRoad); err != nil {
		b.logger.Warn("crossing splice edge rejected", logging.Error(err))
	}
	if _, err := b.graph.AddEdge(crossing, after, graph.EdgeRoad); err != nil {
		b.logger.Warn("crossing splice edge rejected", logging.Error(err))
	}

	updated := make([]uint64, 0, len(seq)+1)
	updated = append(updated, seq[:idx+1]...)
	updated = append(updated, crossing)
	updated = append(updated, seq[idx+1:]...)
	sequences[roadIdx] = updated

	return crossing
}

// nearestInSequence returns the sequence node closest to the point.
func (b *Builder) nearestInSequence(seq []uint64, point geom.Point) (uint64, float64) {
	var nearest uint64
	nearestDist := math.MaxFloat64
	for _, id := range seq {
		node, err := b.graph.GetNode(id)
		if err != nil {
			continue
		}
		if d := geom.Distance(node.Position, point); d < nearestDist {
			nearest, nearestDist = id, d
		}
	}
	return nearest, nearestDist
}

// spliceIndex finds the consecutive pair (idx, idx+1) the point falls between,
// by comparing along-road coordinates. Sequences stay ordered from road start
// to road end, including previously spliced crossings.
func (b *Builder) spliceIndex(seq []uint64, road geom.Road, point geom.Point) int {
	along := func(p geom.Point) float64 {
		return p.Sub(road.Start()).Dot(road.Direction)
	}
	s := along(point)

	idx := 0
	for idx < len(seq)-2 {
		node, err := b.graph.GetNode(seq[idx+1])
		if err != nil {
			break
		}
		if along(node.Position) > s {
			break
		}
		idx++
	}
	return idx
}
