package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanflow/cityroute/pkg/config"
	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/journey"
	"github.com/urbanflow/cityroute/pkg/metrics"
	"github.com/urbanflow/cityroute/pkg/pathfind"
	"github.com/urbanflow/cityroute/pkg/roadbuild"
)

// TestCityGridWorkflow drives the full pipeline: build a road grid from
// geometry, route across it, plan journeys, and watch congestion reroute
// traffic.
func TestCityGridWorkflow(t *testing.T) {
	cfg := config.Default()
	reg := metrics.NewRegistry()

	g := graph.NewWithConfig(graph.Config{
		CellSize: cfg.Graph.CellSize,
		Metrics:  reg,
	})

	t.Log("Step 1: building a 3x3 road grid from raw geometry")
	roads := make([]geom.Road, 0, 6)
	for i := 0; i < 3; i++ {
		offset := float64(i) * 40
		// East-west roads
		roads = append(roads, geom.Road{
			Center:    geom.Point{X: 40, Z: offset},
			Direction: geom.Point{X: 1},
			Length:    80,
			Width:     4,
		})
		// North-south roads
		roads = append(roads, geom.Road{
			Center:    geom.Point{X: offset, Z: 40},
			Direction: geom.Point{Z: 1},
			Length:    80,
			Width:     4,
		})
	}

	builder := roadbuild.NewWithConfig(g, roadbuild.Config{
		Settings: cfg.BuildSettings(),
		Metrics:  reg,
	})
	report := builder.Build(roads)

	require.Equal(t, 9, report.Crossings, "3x3 grid must produce nine crossings")
	require.Zero(t, report.Skipped)

	intersections := 0
	for _, n := range g.Nodes() {
		if n.Type == graph.NodeIntersection {
			intersections++
		}
	}
	assert.GreaterOrEqual(t, intersections, 9, "every crossing promotes or adds an intersection node")

	t.Log("Step 2: routing corner to corner")
	finder := pathfind.NewWithMetrics(g, reg)

	from, ok := g.FindNearestNode(geom.Point{}, graph.ModeDriving, 5)
	require.True(t, ok, "grid corner has a node")
	to, ok := g.FindNearestNode(geom.Point{X: 80, Z: 80}, graph.ModeDriving, 5)
	require.True(t, ok)

	path, err := finder.FindPath(from, to, graph.ModeDriving)
	require.NoError(t, err)
	require.NotEmpty(t, path, "the grid is fully connected")
	assert.Equal(t, from, path[0])
	assert.Equal(t, to, path[len(path)-1])

	t.Log("Step 3: planning and starting journeys")
	planner := journey.NewWithConfig(g, journey.Config{
		Settings: cfg.JourneySettings(),
		Metrics:  reg,
	})

	trip := planner.Plan(geom.Point{X: -2, Z: -2}, geom.Point{X: 82, Z: 82}, graph.ModeDriving)
	require.False(t, trip.IsDirectWalk(), "a cross-grid trip uses the network")
	require.NotEmpty(t, trip.ID)

	// Leg contiguity within the accepted slack
	for i := 1; i < len(trip.Legs); i++ {
		assert.InDelta(t, 0, geom.Distance(trip.Legs[i-1].End, trip.Legs[i].Start), 0.1)
	}

	trip.Start()
	occupied := 0
	for _, leg := range trip.Legs {
		for _, edgeID := range leg.EdgeIDs {
			edge, err := g.GetEdge(edgeID)
			require.NoError(t, err)
			if edge.Occupancy > 0 {
				occupied++
			}
		}
	}
	assert.Greater(t, occupied, 0, "starting a journey occupies its edges")

	t.Log("Step 4: congestion reroutes later traffic")
	// Saturate every edge of the first network leg
	var saturated []uint64
	for _, leg := range trip.Legs {
		if len(leg.EdgeIDs) > 0 {
			saturated = leg.EdgeIDs
			break
		}
	}
	for _, edgeID := range saturated {
		edge, err := g.GetEdge(edgeID)
		require.NoError(t, err)
		for i := edge.Occupancy; i < edge.Capacity; i++ {
			require.NoError(t, g.EnterEdge(edgeID))
		}
	}
	for _, edgeID := range saturated {
		edge, err := g.GetEdge(edgeID)
		require.NoError(t, err)
		assert.Equal(t, 1.0, edge.CongestionLevel())
		assert.Greater(t, edge.TravelTime(), edge.Length/edge.BaseSpeed,
			"congestion raises travel time above free flow")
	}

	saturatedSet := make(map[uint64]bool)
	for _, edgeID := range saturated {
		saturatedSet[edgeID] = true
	}
	rerouted, err := finder.FindPath(from, to, graph.ModeDriving)
	require.NoError(t, err)
	require.NotEmpty(t, rerouted)
	for i := 1; i < len(rerouted); i++ {
		edgeID, ok := g.EdgeBetween(rerouted[i-1], rerouted[i])
		require.True(t, ok, "path hop without a connecting edge")
		assert.False(t, saturatedSet[edgeID],
			"rerouted path still uses saturated edge %d", edgeID)
	}

	t.Log("Step 5: finishing the journey releases occupancy")
	trip.Finish()
	for _, leg := range trip.Legs {
		for _, edgeID := range leg.EdgeIDs {
			edge, err := g.GetEdge(edgeID)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, edge.Occupancy, int64(0))
		}
	}

	stats := g.GetStatistics()
	assert.Equal(t, uint64(len(g.Nodes())), stats.NodeCount)
	assert.Equal(t, uint64(len(g.Edges())), stats.EdgeCount)
}

// TestBatchPlanningUnderLoad plans many journeys concurrently against a
// shared grid and verifies every request gets a usable journey.
func TestBatchPlanningUnderLoad(t *testing.T) {
	g := graph.New()
	builder := roadbuild.New(g)
	builder.Build([]geom.Road{
		{Center: geom.Point{X: 50}, Direction: geom.Point{X: 1}, Length: 100, Width: 4},
		{Center: geom.Point{X: 50, Z: 50}, Direction: geom.Point{X: 1}, Length: 100, Width: 4},
		{Center: geom.Point{Z: 25}, Direction: geom.Point{Z: 1}, Length: 50, Width: 4},
		{Center: geom.Point{X: 100, Z: 25}, Direction: geom.Point{Z: 1}, Length: 50, Width: 4},
	})

	planner := journey.New(g)

	requests := make([]journey.Request, 0, 40)
	for i := 0; i < 40; i++ {
		requests = append(requests, journey.Request{
			Origin:      geom.Point{X: float64(i % 5), Z: -1},
			Destination: geom.Point{X: 100 - float64(i%7), Z: 51},
			Mode:        graph.ModeDriving,
		})
	}

	journeys, err := planner.PlanAll(requests, 8)
	require.NoError(t, err)
	require.Len(t, journeys, len(requests))

	ids := make(map[string]bool)
	for i, j := range journeys {
		require.NotNil(t, j, "request %d got no journey", i)
		require.NotEmpty(t, j.Legs)
		assert.False(t, ids[j.ID], "journey ids must be unique")
		ids[j.ID] = true
	}
}
