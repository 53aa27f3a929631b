package graph

// Read-only snapshot queries for the presentation layer. Everything returned
// is a copy; graph invariants cannot be corrupted through these results, and
// all mutation goes through the TransportGraph API.

// Nodes returns a snapshot of every node.
func (g *TransportGraph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node.Clone())
	}
	return nodes
}

// Edges returns a snapshot of every edge.
func (g *TransportGraph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]*Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge.Clone())
	}
	return edges
}

// IncidentEdges returns snapshots of the edges incident to a node, in
// insertion order.
func (g *TransportGraph) IncidentEdges(nodeID uint64) ([]*Edge, error) {
	defer g.startQueryTiming()()

	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[nodeID]
	if !exists {
		return nil, ErrNodeNotFound
	}

	edges := make([]*Edge, 0, len(node.Edges))
	for _, edgeID := range node.Edges {
		if edge, ok := g.edges[edgeID]; ok {
			edges = append(edges, edge.Clone())
		}
	}
	return edges, nil
}
