// Package roadbuild derives graph topology from raw road geometry. A build
// segments each road into evenly spaced nodes, detects crossings between road
// pairs, and stitches disjoint roads whose nodes nearly touch.
package roadbuild

import (
	"math"
	"time"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/logging"
	"github.com/urbanflow/cityroute/pkg/metrics"
)

// Default build settings, in world length units.
const (
	DefaultNodeSpacing         = 5.0
	DefaultSnapTolerance       = 1.0
	DefaultConnectionThreshold = 2.0
)

// Settings controls node density and junction detection.
type Settings struct {
	// NodeSpacing is the target distance between consecutive nodes on a road.
	NodeSpacing float64
	// SnapTolerance is the maximum distance at which a crossing merges into
	// an existing road node instead of splicing a new one.
	SnapTolerance float64
	// ConnectionThreshold is the maximum distance at which nodes on
	// different roads get stitched together.
	ConnectionThreshold float64
}

// DefaultSettings returns the standard build settings.
func DefaultSettings() Settings {
	return Settings{
		NodeSpacing:         DefaultNodeSpacing,
		SnapTolerance:       DefaultSnapTolerance,
		ConnectionThreshold: DefaultConnectionThreshold,
	}
}

// TerrainClassifier answers whether a point is usable for a mode. It is an
// optional capability supplied by the host; stitching consults it before
// linking roads across unknown ground.
type TerrainClassifier interface {
	IsTraversable(position geom.Point, mode graph.Mode) bool
}

// Config carries optional collaborators for a Builder.
type Config struct {
	Settings Settings
	Terrain  TerrainClassifier
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// Builder populates a transport graph from road geometry.
type Builder struct {
	graph    *graph.TransportGraph
	settings Settings
	terrain  TerrainClassifier
	logger   logging.Logger
	metrics  *metrics.Registry
}

// New creates a Builder with default settings.
func New(g *graph.TransportGraph) *Builder {
	return NewWithConfig(g, Config{})
}

// NewWithConfig creates a Builder with explicit settings and collaborators.
func NewWithConfig(g *graph.TransportGraph, cfg Config) *Builder {
	settings := cfg.Settings
	if settings.NodeSpacing <= 0 {
		settings.NodeSpacing = DefaultNodeSpacing
	}
	if settings.SnapTolerance <= 0 {
		settings.SnapTolerance = DefaultSnapTolerance
	}
	if settings.ConnectionThreshold <= 0 {
		settings.ConnectionThreshold = DefaultConnectionThreshold
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Builder{
		graph:    g,
		settings: settings,
		terrain:  cfg.Terrain,
		logger:   logger.With(logging.Component("roadbuild")),
		metrics:  cfg.Metrics,
	}
}

// Report summarizes one build pass.
type Report struct {
	Roads     int
	Skipped   int
	Crossings int
	Stitches  int
	Nodes     uint64
	Edges     uint64
	Duration  time.Duration
}

// Build clears the graph and repopulates it from the given roads. It must run
// with exclusive access to the graph; no concurrent reads are safe while the
// index and node set are being replaced.
func (b *Builder) Build(roads []geom.Road) *Report {
	started := time.Now()
	b.graph.Clear()

	report := &Report{Roads: len(roads)}

	// Per-road node sequences ordered from Start to End. Crossing insertion
	// splices into these, so later passes see the updated ordering.
	sequences := make([][]uint64, len(roads))
	for i, road := range roads {
		if road.IsDegenerate() {
			b.logger.Warn("skipping degenerate road",
				logging.RoadIndex(i),
				logging.Float64("length", road.Length))
			report.Skipped++
			continue
		}
		sequences[i] = b.segmentRoad(road)
	}

	report.Crossings = b.connectCrossings(roads, sequences)
	report.Stitches = b.stitchDisjoint(sequences)

	stats := b.graph.GetStatistics()
	report.Nodes = stats.NodeCount
	report.Edges = stats.EdgeCount
	report.Duration = time.Since(started)

	b.metrics.RecordBuild(report.Duration, report.Roads, report.Crossings, report.Skipped)
	b.logger.Info("road network build complete",
		logging.Int("roads", report.Roads),
		logging.Int("skipped", report.Skipped),
		logging.Int("crossings", report.Crossings),
		logging.Int("stitches", report.Stitches),
		logging.Uint64("nodes", report.Nodes),
		logging.Uint64("edges", report.Edges),
		logging.Latency(report.Duration))
	return report
}

// segmentRoad places evenly spaced nodes along a road and connects consecutive
// pairs with road edges. Endpoints are entry points, interior nodes road
// points.
func (b *Builder) segmentRoad(road geom.Road) []uint64 {
	count := int(math.Ceil(road.Length / b.settings.NodeSpacing))
	if count < 2 {
		count = 2
	}

	start, end := road.Start(), road.End()
	ids := make([]uint64, count)
	for i := 0; i < count; i++ {
		t := float64(i) / float64(count-1)
		nodeType := graph.NodeRoadPoint
		if i == 0 || i == count-1 {
			nodeType = graph.NodeEntryPoint
		}
		ids[i] = b.graph.AddNode(geom.LerpPoint(start, end, t), nodeType)
		if i > 0 {
			if _, err := b.graph.AddEdge(ids[i-1], ids[i], graph.EdgeRoad); err != nil {
				b.logger.Warn("road segment edge rejected", logging.Error(err))
			}
		}
	}
	return ids
}
