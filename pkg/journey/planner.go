// Package journey composes trips over the transport network. A planned
// journey is an ordered list of single-mode legs: walk to the network, ride
// or drive along it, walk from the network to the destination. The planner
// falls back to a direct walk whenever the network route is missing or not
// worth the detour.
package journey

import (
	"github.com/google/uuid"

	"github.com/urbanflow/cityroute/pkg/geom"
	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/logging"
	"github.com/urbanflow/cityroute/pkg/metrics"
	"github.com/urbanflow/cityroute/pkg/parallel"
	"github.com/urbanflow/cityroute/pkg/pathfind"
)

// Default planner settings, in world length units.
const (
	DefaultLongJourneyThreshold = 20.0
	DefaultRoadEntryThreshold   = 30.0
	DefaultMaxRoadDetourFactor  = 1.5
	DefaultMinDrivingDistance   = 10.0
)

// minLegLength suppresses walk legs shorter than this; it is also the
// accepted slack for leg contiguity.
const minLegLength = 0.1

// Settings tunes the walk-versus-network decision.
type Settings struct {
	// LongJourneyThreshold is the direct distance below which a trip is
	// always a single walk.
	LongJourneyThreshold float64
	// RoadEntryThreshold bounds the search radius for network entry nodes.
	RoadEntryThreshold float64
	// MaxRoadDetourFactor rejects network routes longer than this multiple
	// of the direct distance.
	MaxRoadDetourFactor float64
	// MinDrivingDistance rejects network routes whose on-network distance,
	// net of the walks at both ends, is too short to bother.
	MinDrivingDistance float64
}

// DefaultSettings returns the standard planner settings.
func DefaultSettings() Settings {
	return Settings{
		LongJourneyThreshold: DefaultLongJourneyThreshold,
		RoadEntryThreshold:   DefaultRoadEntryThreshold,
		MaxRoadDetourFactor:  DefaultMaxRoadDetourFactor,
		MinDrivingDistance:   DefaultMinDrivingDistance,
	}
}

// Config carries optional collaborators for a Planner.
type Config struct {
	Settings Settings
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// Planner plans journeys against a transport graph.
type Planner struct {
	graph    *graph.TransportGraph
	finder   *pathfind.Finder
	settings Settings
	logger   logging.Logger
	metrics  *metrics.Registry
}

// New creates a Planner with default settings.
func New(g *graph.TransportGraph) *Planner {
	return NewWithConfig(g, Config{})
}

// NewWithConfig creates a Planner with explicit settings and collaborators.
func NewWithConfig(g *graph.TransportGraph, cfg Config) *Planner {
	settings := cfg.Settings
	if settings.LongJourneyThreshold <= 0 {
		settings.LongJourneyThreshold = DefaultLongJourneyThreshold
	}
	if settings.RoadEntryThreshold <= 0 {
		settings.RoadEntryThreshold = DefaultRoadEntryThreshold
	}
	if settings.MaxRoadDetourFactor <= 0 {
		settings.MaxRoadDetourFactor = DefaultMaxRoadDetourFactor
	}
	if settings.MinDrivingDistance <= 0 {
		settings.MinDrivingDistance = DefaultMinDrivingDistance
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Planner{
		graph:    g,
		finder:   pathfind.NewWithMetrics(g, cfg.Metrics),
		settings: settings,
		logger:   logger.With(logging.Component("journey")),
		metrics:  cfg.Metrics,
	}
}

// Plan builds a journey from origin to destination for the preferred mode.
// It always returns a usable journey; when no worthwhile network route
// exists the journey is a single direct walk.
func (p *Planner) Plan(origin, destination geom.Point, mode graph.Mode) *Journey {
	directDistance := geom.Distance(origin, destination)

	if directDistance <= p.settings.LongJourneyThreshold {
		return p.directWalk(origin, destination, "short_trip")
	}

	entryID, ok := p.graph.FindNearestNode(origin, mode, p.settings.RoadEntryThreshold)
	if !ok {
		return p.directWalk(origin, destination, "no_entry")
	}
	exitID, ok := p.graph.FindNearestNode(destination, mode, p.settings.RoadEntryThreshold)
	if !ok {
		return p.directWalk(origin, destination, "no_exit")
	}

	path, err := p.finder.FindPath(entryID, exitID, mode)
	if err != nil || len(path) == 0 {
		return p.directWalk(origin, destination, "no_path")
	}

	positions, ok := p.pathPositions(path)
	if !ok {
		return p.directWalk(origin, destination, "no_path")
	}

	roadPathDistance := 0.0
	for i := 1; i < len(positions); i++ {
		roadPathDistance += geom.Distance(positions[i-1], positions[i])
	}
	walkToEntry := geom.Distance(origin, positions[0])
	walkFromExit := geom.Distance(positions[len(positions)-1], destination)

	if roadPathDistance-(walkToEntry+walkFromExit) < p.settings.MinDrivingDistance {
		return p.directWalk(origin, destination, "too_short")
	}
	if roadPathDistance+walkToEntry+walkFromExit > directDistance*p.settings.MaxRoadDetourFactor {
		return p.directWalk(origin, destination, "detour")
	}

	journey := p.networkJourney(origin, destination, path, positions, mode)
	p.metrics.RecordJourney("network", len(journey.Legs))
	p.logger.Debug("planned network journey",
		logging.JourneyID(journey.ID),
		logging.Mode(mode.String()),
		logging.Int("legs", len(journey.Legs)))
	return journey
}

// Request is one origin/destination pair for batch planning.
type Request struct {
	Origin      geom.Point
	Destination geom.Point
	Mode        graph.Mode
}

// PlanAll plans many journeys concurrently on a worker pool. Results are in
// request order. Occupancy only changes when a journey is started, so
// concurrent planning is safe against a structurally stable graph.
func (p *Planner) PlanAll(requests []Request, workers int) ([]*Journey, error) {
	pool, err := parallel.NewWorkerPool(workers)
	if err != nil {
		return nil, err
	}

	journeys := make([]*Journey, len(requests))
	for i, req := range requests {
		i, req := i, req
		pool.Submit(func() {
			journeys[i] = p.Plan(req.Origin, req.Destination, req.Mode)
		})
	}
	pool.Wait()
	return journeys, nil
}

// directWalk is the universal fallback: a single walking leg.
func (p *Planner) directWalk(origin, destination geom.Point, reason string) *Journey {
	p.metrics.RecordJourney("direct_walk", 1)
	p.logger.Debug("planned direct walk", logging.String("reason", reason))
	return &Journey{
		ID:    uuid.NewString(),
		graph: p.graph,
		Legs: []Leg{{
			Start: origin,
			End:   destination,
			Mode:  graph.ModeWalking,
		}},
	}
}

// pathPositions resolves node positions along a path. A node vanishing
// mid-plan means the graph mutated underneath us; the caller falls back.
func (p *Planner) pathPositions(path []uint64) ([]geom.Point, bool) {
	positions := make([]geom.Point, len(path))
	for i, id := range path {
		node, err := p.graph.GetNode(id)
		if err != nil {
			return nil, false
		}
		positions[i] = node.Position
	}
	return positions, true
}

// networkJourney assembles the leg list: walk to the entry node, one leg per
// significant waypoint pair, walk from the exit node. Intermediate road
// points are elided so legs span junction to junction.
func (p *Planner) networkJourney(origin, destination geom.Point, path []uint64, positions []geom.Point, mode graph.Mode) *Journey {
	legs := make([]Leg, 0, len(path)+1)

	entry := positions[0]
	if geom.Distance(origin, entry) >= minLegLength {
		legs = append(legs, Leg{Start: origin, End: entry, Mode: graph.ModeWalking})
	}

	waypoints := p.significantWaypoints(path)
	for w := 1; w < len(waypoints); w++ {
		from, to := waypoints[w-1], waypoints[w]
		leg := Leg{
			Start: positions[from],
			End:   positions[to],
			Mode:  graph.ModeWalking,
		}
		for i := from; i < to; i++ {
			edgeID, ok := p.graph.EdgeBetween(path[i], path[i+1])
			if !ok {
				continue
			}
			leg.EdgeIDs = append(leg.EdgeIDs, edgeID)
		}
		leg.Mode = p.legMode(leg.EdgeIDs, mode)
		legs = append(legs, leg)
	}

	exit := positions[len(positions)-1]
	if geom.Distance(exit, destination) >= minLegLength {
		legs = append(legs, Leg{Start: exit, End: destination, Mode: graph.ModeWalking})
	}

	return &Journey{
		ID:    uuid.NewString(),
		graph: p.graph,
		Legs:  legs,
	}
}

// significantWaypoints returns path indices kept as leg boundaries: both ends
// plus every intersection and entry point.
func (p *Planner) significantWaypoints(path []uint64) []int {
	waypoints := make([]int, 0, len(path))
	for i, id := range path {
		if i == 0 || i == len(path)-1 {
			waypoints = append(waypoints, i)
			continue
		}
		node, err := p.graph.GetNode(id)
		if err != nil {
			continue
		}
		if node.Type == graph.NodeIntersection || node.Type == graph.NodeEntryPoint {
			waypoints = append(waypoints, i)
		}
	}
	return waypoints
}

// legMode picks the best-matching mode for a leg from its first edge: the
// preferred mode when the edge allows it, else the edge's first allowed mode.
func (p *Planner) legMode(edgeIDs []uint64, preferred graph.Mode) graph.Mode {
	if len(edgeIDs) == 0 {
		return graph.ModeWalking
	}
	edge, err := p.graph.GetEdge(edgeIDs[0])
	if err != nil {
		return graph.ModeWalking
	}
	if edge.Modes.Has(preferred) {
		return preferred
	}
	if allowed := edge.Modes.Modes(); len(allowed) > 0 {
		return allowed[0]
	}
	return graph.ModeWalking
}
