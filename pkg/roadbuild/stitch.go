package roadbuild

import (
	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/logging"
)

// stitchDisjoint connects nodes on different roads whose distance falls below
// the connection threshold, promoting both ends to intersections. All-pairs
// over road nodes; acceptable at build time only. Returns the number of
// stitch edges added.
func (b *Builder) stitchDisjoint(sequences [][]uint64) int {
	type roadNode struct {
		road     int
		id       uint64
		position geom.Point
	}

	nodes := make([]roadNode, 0)
	for road, seq := range sequences {
		for _, id := range seq {
			node, err := b.graph.GetNode(id)
			if err != nil {
				continue
			}
			nodes = append(nodes, roadNode{road: road, id: id, position: node.Position})
		}
	}

	stitches := 0
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, c := nodes[i], nodes[j]
			if a.road == c.road {
				continue
			}
			// A spliced crossing node sits in both roads' sequences
			if a.id == c.id {
				continue
			}
			if geom.Distance(a.position, c.position) > b.settings.ConnectionThreshold {
				continue
			}
			if _, exists := b.graph.EdgeBetween(a.id, c.id); exists {
				continue
			}
			if b.terrain != nil {
				midpoint := geom.LerpPoint(a.position, c.position, 0.5)
				if !b.terrain.IsTraversable(midpoint, graph.ModeDriving) {
					continue
				}
			}

			if _, err := b.graph.AddEdge(a.id, c.id, graph.EdgeRoad); err != nil {
				b.logger.Warn("stitch edge rejected", logging.Error(err))
				continue
			}
			b.promoteToIntersection(a.id)
			b.promoteToIntersection(c.id)
			stitches++
		}
	}
	return stitches
}

// promoteToIntersection retypes plain road and entry nodes; transit nodes and
// existing intersections keep their type.
func (b *Builder) promoteToIntersection(nodeID uint64) {
	node, err := b.graph.GetNode(nodeID)
	if err != nil {
		return
	}
	if node.Type == graph.NodeRoadPoint || node.Type == graph.NodeEntryPoint {
		b.graph.SetNodeType(nodeID, graph.NodeIntersection)
	}
}
