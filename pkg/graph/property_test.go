package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/urbanflow/cityroute/pkg/geom"
)

func nodeExists(g *TransportGraph, nodeID uint64) bool {
	_, err := g.GetNode(nodeID)
	return err == nil
}

// TestGraphInvariants uses property-based testing to verify referential
// integrity. These properties must hold for any sequence of graph operations.
func TestGraphInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Property 1: edge creation requires both endpoints to exist
	properties.Property("edge creation preserves node existence", prop.ForAll(
		func(startID, endID uint64) bool {
			g := New()
			g.AddNode(geom.Point{}, NodeRoadPoint)
			g.AddNode(geom.Point{X: 1}, NodeRoadPoint)

			_, err := g.AddEdge(startID, endID, EdgeRoad)
			if err == nil {
				return nodeExists(g, startID) && nodeExists(g, endID)
			}
			// Failure is valid whenever either id is absent
			return !nodeExists(g, startID) || !nodeExists(g, endID)
		},
		gen.UInt64Range(0, 5),
		gen.UInt64Range(0, 5),
	))

	// Property 2: removing a node leaves no incident edge observable
	properties.Property("node removal cascades to incident edges", prop.ForAll(
		func(spokes int) bool {
			g := New()
			hub := g.AddNode(geom.Point{}, NodeIntersection)

			edgeIDs := make([]uint64, 0, spokes)
			for i := 0; i < spokes; i++ {
				n := g.AddNode(geom.Point{X: float64(i + 1)}, NodeRoadPoint)
				e, err := g.AddEdge(hub, n, EdgeRoad)
				if err != nil {
					return false
				}
				edgeIDs = append(edgeIDs, e)
			}

			g.RemoveNode(hub)

			for _, e := range edgeIDs {
				if _, err := g.GetEdge(e); err == nil {
					return false // dangling edge
				}
			}
			// No surviving node may reference a removed edge
			for _, n := range g.Nodes() {
				if len(n.Edges) != 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 10),
	))

	// Property 3: RemoveNode is idempotent
	properties.Property("double remove equals single remove", prop.ForAll(
		func(extra int) bool {
			g := New()
			a := g.AddNode(geom.Point{}, NodeRoadPoint)
			for i := 0; i < extra; i++ {
				b := g.AddNode(geom.Point{X: float64(i + 1)}, NodeRoadPoint)
				if _, err := g.AddEdge(a, b, EdgeRoad); err != nil {
					return false
				}
			}

			g.RemoveNode(a)
			after := g.GetStatistics()
			g.RemoveNode(a)
			again := g.GetStatistics()

			return after.NodeCount == again.NodeCount && after.EdgeCount == again.EdgeCount
		},
		gen.IntRange(0, 8),
	))

	// Property 4: node count tracks adds and removes exactly
	properties.Property("node count matches live nodes", prop.ForAll(
		func(adds int, removes int) bool {
			g := New()
			ids := make([]uint64, 0, adds)
			for i := 0; i < adds; i++ {
				ids = append(ids, g.AddNode(geom.Point{X: float64(i)}, NodeRoadPoint))
			}
			if removes > len(ids) {
				removes = len(ids)
			}
			for i := 0; i < removes; i++ {
				g.RemoveNode(ids[i])
			}

			stats := g.GetStatistics()
			return stats.NodeCount == uint64(adds-removes) &&
				int(stats.NodeCount) == len(g.Nodes())
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
