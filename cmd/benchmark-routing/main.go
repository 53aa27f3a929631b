package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/urbanflow/cityroute/pkg/config"
	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/journey"
	"github.com/urbanflow/cityroute/pkg/pathfind"
	"github.com/urbanflow/cityroute/pkg/roadbuild"
)

func main() {
	gridSize := flag.Int("grid", 10, "Number of roads per axis in the synthetic grid")
	blockLength := flag.Float64("block", 50, "Distance between parallel roads")
	numQueries := flag.Int("queries", 1000, "Number of routing queries to run")
	numJourneys := flag.Int("journeys", 200, "Number of journeys to plan and start")
	configPath := flag.String("config", "", "Optional YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	fmt.Printf("🚗 CityRoute Routing Benchmark\n")
	fmt.Printf("==============================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Grid:     %dx%d roads\n", *gridSize, *gridSize)
	fmt.Printf("  Block:    %.0f units\n", *blockLength)
	fmt.Printf("  Queries:  %d\n", *numQueries)
	fmt.Printf("  Journeys: %d\n\n", *numJourneys)

	g := graph.NewWithConfig(cfg.GraphOptions())

	fmt.Printf("🏗️  Building road network...\n")
	extent := float64(*gridSize-1) * *blockLength
	roads := make([]geom.Road, 0, 2*(*gridSize))
	for i := 0; i < *gridSize; i++ {
		offset := float64(i) * *blockLength
		roads = append(roads,
			geom.Road{
				Center:    geom.Point{X: extent / 2, Z: offset},
				Direction: geom.Point{X: 1},
				Length:    extent,
				Width:     4,
			},
			geom.Road{
				Center:    geom.Point{X: offset, Z: extent / 2},
				Direction: geom.Point{Z: 1},
				Length:    extent,
				Width:     4,
			})
	}

	builder := roadbuild.NewWithConfig(g, roadbuild.Config{Settings: cfg.BuildSettings()})
	report := builder.Build(roads)
	fmt.Printf("   Roads:      %d (%d skipped)\n", report.Roads, report.Skipped)
	fmt.Printf("   Crossings:  %d\n", report.Crossings)
	fmt.Printf("   Stitches:   %d\n", report.Stitches)
	fmt.Printf("   Nodes:      %d\n", report.Nodes)
	fmt.Printf("   Edges:      %d\n", report.Edges)
	fmt.Printf("   Build time: %s\n\n", report.Duration)

	nodes := g.Nodes()
	if len(nodes) == 0 {
		log.Fatal("Build produced an empty graph")
	}

	fmt.Printf("🎯 Running %d routing queries...\n\n", *numQueries)
	runRoutingBenchmark(g, nodes, *numQueries)

	fmt.Printf("\n🧳 Planning %d journeys with live congestion...\n\n", *numJourneys)
	runJourneyBenchmark(g, cfg, extent, *numJourneys)
}

func runRoutingBenchmark(g *graph.TransportGraph, nodes []*graph.Node, numQueries int) {
	finder := pathfind.New(g)

	results := struct {
		found     int
		notFound  int
		totalTime time.Duration
		totalHops int
		maxHops   int
		maxTime   time.Duration
	}{}

	for i := 0; i < numQueries; i++ {
		from := nodes[rand.Intn(len(nodes))].ID
		to := nodes[rand.Intn(len(nodes))].ID

		start := time.Now()
		path, err := finder.FindPath(from, to, graph.ModeDriving)
		elapsed := time.Since(start)
		if err != nil {
			continue
		}

		if len(path) > 0 {
			results.found++
			hops := len(path) - 1
			results.totalHops += hops
			if hops > results.maxHops {
				results.maxHops = hops
			}
		} else {
			results.notFound++
		}

		results.totalTime += elapsed
		if elapsed > results.maxTime {
			results.maxTime = elapsed
		}
	}

	fmt.Printf("📈 Routing Statistics\n")
	fmt.Printf("─────────────────────\n")
	fmt.Printf("Found:       %d (%.1f%%)\n", results.found, 100.0*float64(results.found)/float64(numQueries))
	fmt.Printf("Not found:   %d\n", results.notFound)
	if results.found > 0 {
		fmt.Printf("Avg hops:    %.1f\n", float64(results.totalHops)/float64(results.found))
		fmt.Printf("Max hops:    %d\n", results.maxHops)
	}
	fmt.Printf("Avg query:   %s\n", results.totalTime/time.Duration(numQueries))
	fmt.Printf("Max query:   %s\n", results.maxTime)
	fmt.Printf("Throughput:  %.0f queries/sec\n", float64(numQueries)/results.totalTime.Seconds())
}

func runJourneyBenchmark(g *graph.TransportGraph, cfg *config.Config, extent float64, numJourneys int) {
	planner := journey.NewWithConfig(g, journey.Config{Settings: cfg.JourneySettings()})

	requests := make([]journey.Request, numJourneys)
	for i := range requests {
		requests[i] = journey.Request{
			Origin:      geom.Point{X: rand.Float64() * extent, Z: rand.Float64() * extent},
			Destination: geom.Point{X: rand.Float64() * extent, Z: rand.Float64() * extent},
			Mode:        graph.ModeDriving,
		}
	}

	start := time.Now()
	journeys, err := planner.PlanAll(requests, cfg.Journey.Workers)
	elapsed := time.Since(start)
	if err != nil {
		log.Fatalf("Batch planning failed: %v", err)
	}

	network, walks, legs := 0, 0, 0
	for _, j := range journeys {
		legs += len(j.Legs)
		if j.IsDirectWalk() {
			walks++
		} else {
			network++
			j.Start()
		}
	}

	// With network journeys active, replan the same requests against the
	// congested graph to measure the feedback cost.
	congestedStart := time.Now()
	if _, err := planner.PlanAll(requests, cfg.Journey.Workers); err != nil {
		log.Fatalf("Congested replanning failed: %v", err)
	}
	congestedElapsed := time.Since(congestedStart)

	for _, j := range journeys {
		j.Finish()
	}

	fmt.Printf("📈 Journey Statistics\n")
	fmt.Printf("─────────────────────\n")
	fmt.Printf("Planned:        %d (%d network, %d direct walks)\n", len(journeys), network, walks)
	fmt.Printf("Total legs:     %d\n", legs)
	fmt.Printf("Batch time:     %s (%.0f journeys/sec)\n", elapsed, float64(numJourneys)/elapsed.Seconds())
	fmt.Printf("Congested pass: %s\n", congestedElapsed)
}
