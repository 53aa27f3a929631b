package graph

// SpeedFloorFactor is the fraction of free-flow speed an edge degrades to at
// full congestion. This is the single congestion model used everywhere costs
// are computed.
const SpeedFloorFactor = 0.2

// CongestionThreshold is the congestion level whose crossing fires a
// CongestionEvent.
const CongestionThreshold = 0.5

// EdgeDefaults are the per-type values assigned at edge creation. Speeds are
// meters per second.
type EdgeDefaults struct {
	BaseSpeed float64
	Capacity  int64
	Modes     ModeSet
}

// edgeDefaults is the single source of truth for type defaults. Callers may
// override individual edges after creation.
var edgeDefaults = map[EdgeType]EdgeDefaults{
	EdgeRoad:       {BaseSpeed: 10.0, Capacity: 10, Modes: NewModeSet(ModeDriving)},
	EdgeSidewalk:   {BaseSpeed: 1.4, Capacity: 20, Modes: NewModeSet(ModeWalking)},
	EdgeBikeLane:   {BaseSpeed: 4.0, Capacity: 15, Modes: NewModeSet(ModeBiking)},
	EdgeBusRoute:   {BaseSpeed: 8.0, Capacity: 5, Modes: NewModeSet(ModeTransit)},
	EdgeTrainRoute: {BaseSpeed: 15.0, Capacity: 3, Modes: NewModeSet(ModeTransit)},
	EdgeCrosswalk:  {BaseSpeed: 1.2, Capacity: 15, Modes: NewModeSet(ModeWalking)},
}

// DefaultsFor returns the creation defaults for an edge type. Unknown types
// fall back to Road defaults.
func DefaultsFor(t EdgeType) EdgeDefaults {
	if d, ok := edgeDefaults[t]; ok {
		return d
	}
	return edgeDefaults[EdgeRoad]
}

// MaxBaseSpeed returns the highest base speed in the defaults table. Used to
// scale the pathfinding heuristic into travel-time units.
func MaxBaseSpeed() float64 {
	max := 0.0
	for _, d := range edgeDefaults {
		if d.BaseSpeed > max {
			max = d.BaseSpeed
		}
	}
	return max
}
