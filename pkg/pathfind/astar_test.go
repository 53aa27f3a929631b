package pathfind

import (
	"errors"
	"testing"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
)

// lineGraph builds a chain of nodes spaced 10 apart connected by edges of the
// given type, returning the node ids in order.
func lineGraph(t *testing.T, g *graph.TransportGraph, count int, edgeType graph.EdgeType) []uint64 {
	t.Helper()
	ids := make([]uint64, count)
	for i := 0; i < count; i++ {
		ids[i] = g.AddNode(geom.Point{X: float64(i) * 10}, graph.NodeRoadPoint)
	}
	for i := 1; i < count; i++ {
		if _, err := g.AddEdge(ids[i-1], ids[i], edgeType); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	return ids
}

func pathsEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestFindPath_DirectEdge tests that directly connected nodes return [A,B]
func TestFindPath_DirectEdge(t *testing.T) {
	g := graph.New()
	ids := lineGraph(t, g, 2, graph.EdgeRoad)

	f := New(g)
	path, err := f.FindPath(ids[0], ids[1], graph.ModeDriving)
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if !pathsEqual(path, ids) {
		t.Errorf("path = %v, want %v", path, ids)
	}

	// And in reverse: directionality is informational for two-way edges
	reverse, err := f.FindPath(ids[1], ids[0], graph.ModeDriving)
	if err != nil {
		t.Fatalf("reverse FindPath failed: %v", err)
	}
	if !pathsEqual(reverse, []uint64{ids[1], ids[0]}) {
		t.Errorf("reverse path = %v, want %v", reverse, []uint64{ids[1], ids[0]})
	}
}

// TestFindPath_StartEqualsEnd tests the single-node special case
func TestFindPath_StartEqualsEnd(t *testing.T) {
	g := graph.New()
	id := g.AddNode(geom.Point{}, graph.NodeIntersection)

	path, err := New(g).FindPath(id, id, graph.ModeWalking)
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if !pathsEqual(path, []uint64{id}) {
		t.Errorf("path = %v, want single-node path", path)
	}
}

// TestFindPath_Chain tests a multi-hop route
func TestFindPath_Chain(t *testing.T) {
	g := graph.New()
	ids := lineGraph(t, g, 6, graph.EdgeRoad)

	path, err := New(g).FindPath(ids[0], ids[5], graph.ModeDriving)
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if !pathsEqual(path, ids) {
		t.Errorf("path = %v, want full chain %v", path, ids)
	}
}

// TestFindPath_NoPath tests disconnected components
func TestFindPath_NoPath(t *testing.T) {
	g := graph.New()
	left := lineGraph(t, g, 2, graph.EdgeRoad)

	// A disconnected pair far away
	c := g.AddNode(geom.Point{X: 1000}, graph.NodeRoadPoint)
	d := g.AddNode(geom.Point{X: 1010}, graph.NodeRoadPoint)
	if _, err := g.AddEdge(c, d, graph.EdgeRoad); err != nil {
		t.Fatal(err)
	}

	path, err := New(g).FindPath(left[0], c, graph.ModeDriving)
	if err != nil {
		t.Fatalf("no-path search returned error: %v", err)
	}
	if len(path) != 0 {
		t.Errorf("path = %v, want empty (no path is not an error)", path)
	}
}

// TestFindPath_UnknownNode tests the explicit error path
func TestFindPath_UnknownNode(t *testing.T) {
	g := graph.New()
	id := g.AddNode(geom.Point{}, graph.NodeRoadPoint)

	if _, err := New(g).FindPath(id, 999, graph.ModeDriving); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("error = %v, want ErrNodeNotFound", err)
	}
	if _, err := New(g).FindPath(999, id, graph.ModeDriving); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("error = %v, want ErrNodeNotFound", err)
	}
}

// TestFindPath_ModeAdmissibility tests that inadmissible edges are skipped
// entirely
func TestFindPath_ModeAdmissibility(t *testing.T) {
	g := graph.New()
	ids := lineGraph(t, g, 3, graph.EdgeRoad) // driving only

	path, err := New(g).FindPath(ids[0], ids[2], graph.ModeWalking)
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if len(path) != 0 {
		t.Errorf("walking path over road-only edges = %v, want empty", path)
	}

	// A parallel sidewalk chain opens the route for walking
	a := g.AddNode(geom.Point{X: 0, Z: 5}, graph.NodeRoadPoint)
	b := g.AddNode(geom.Point{X: 20, Z: 5}, graph.NodeRoadPoint)
	if _, err := g.AddEdge(ids[0], a, graph.EdgeSidewalk); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(a, b, graph.EdgeSidewalk); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(b, ids[2], graph.EdgeSidewalk); err != nil {
		t.Fatal(err)
	}

	path, err = New(g).FindPath(ids[0], ids[2], graph.ModeWalking)
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	want := []uint64{ids[0], a, b, ids[2]}
	if !pathsEqual(path, want) {
		t.Errorf("walking path = %v, want sidewalk route %v", path, want)
	}
}

// TestFindPath_OneWay tests one-way edge direction enforcement
func TestFindPath_OneWay(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geom.Point{X: 0}, graph.NodeRoadPoint)
	b := g.AddNode(geom.Point{X: 10}, graph.NodeRoadPoint)
	edgeID, _ := g.AddEdge(a, b, graph.EdgeRoad)
	if err := g.SetEdgeOneWay(edgeID, true); err != nil {
		t.Fatal(err)
	}

	f := New(g)
	forward, _ := f.FindPath(a, b, graph.ModeDriving)
	if !pathsEqual(forward, []uint64{a, b}) {
		t.Errorf("forward path = %v, want [a b]", forward)
	}

	backward, _ := f.FindPath(b, a, graph.ModeDriving)
	if len(backward) != 0 {
		t.Errorf("backward path over one-way edge = %v, want empty", backward)
	}
}

// TestFindPath_RoutesAroundCongestion tests that occupancy steers the search:
// two same-length routes, one congested, the clear one must win
func TestFindPath_RoutesAroundCongestion(t *testing.T) {
	g := graph.New()

	start := g.AddNode(geom.Point{X: 0}, graph.NodeIntersection)
	end := g.AddNode(geom.Point{X: 20}, graph.NodeIntersection)
	viaTop := g.AddNode(geom.Point{X: 10, Z: 10}, graph.NodeRoadPoint)
	viaBottom := g.AddNode(geom.Point{X: 10, Z: -10}, graph.NodeRoadPoint)

	topIn, _ := g.AddEdge(start, viaTop, graph.EdgeRoad)
	topOut, _ := g.AddEdge(viaTop, end, graph.EdgeRoad)
	if _, err := g.AddEdge(start, viaBottom, graph.EdgeRoad); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(viaBottom, end, graph.EdgeRoad); err != nil {
		t.Fatal(err)
	}

	// Saturate the top route
	for i := int64(0); i < 10; i++ {
		if err := g.EnterEdge(topIn); err != nil {
			t.Fatal(err)
		}
		if err := g.EnterEdge(topOut); err != nil {
			t.Fatal(err)
		}
	}

	path, err := New(g).FindPath(start, end, graph.ModeDriving)
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	want := []uint64{start, viaBottom, end}
	if !pathsEqual(path, want) {
		t.Errorf("path = %v, want uncongested bottom route %v", path, want)
	}
}

// TestFindPath_PrefersShorterTravelTime tests cost-based route choice with
// asymmetric geometry
func TestFindPath_PrefersShorterTravelTime(t *testing.T) {
	g := graph.New()

	start := g.AddNode(geom.Point{X: 0}, graph.NodeIntersection)
	end := g.AddNode(geom.Point{X: 30}, graph.NodeIntersection)
	near := g.AddNode(geom.Point{X: 15, Z: 5}, graph.NodeRoadPoint)
	far := g.AddNode(geom.Point{X: 15, Z: 50}, graph.NodeRoadPoint)

	for _, via := range []uint64{near, far} {
		if _, err := g.AddEdge(start, via, graph.EdgeRoad); err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddEdge(via, end, graph.EdgeRoad); err != nil {
			t.Fatal(err)
		}
	}

	path, err := New(g).FindPath(start, end, graph.ModeDriving)
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	want := []uint64{start, near, end}
	if !pathsEqual(path, want) {
		t.Errorf("path = %v, want short detour %v", path, want)
	}
}
