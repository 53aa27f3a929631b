// Package config loads network construction and journey planning settings
// from YAML, applying defaults and validating ranges before anything touches
// the graph.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/urbanflow/cityroute/pkg/graph"
	"github.com/urbanflow/cityroute/pkg/journey"
	"github.com/urbanflow/cityroute/pkg/roadbuild"
	"github.com/urbanflow/cityroute/pkg/spatial"
)

// GraphConfig tunes the transport graph and its spatial index.
type GraphConfig struct {
	CellSize float64 `yaml:"cell_size" validate:"gte=0"`
}

// BuildConfig tunes road network construction.
type BuildConfig struct {
	NodeSpacing         float64 `yaml:"node_spacing" validate:"gte=0"`
	SnapTolerance       float64 `yaml:"snap_tolerance" validate:"gte=0"`
	ConnectionThreshold float64 `yaml:"connection_threshold" validate:"gte=0"`
}

// JourneyConfig tunes the journey planner's walk-versus-network decision.
type JourneyConfig struct {
	LongJourneyThreshold float64 `yaml:"long_journey_threshold" validate:"gte=0"`
	RoadEntryThreshold   float64 `yaml:"road_entry_threshold" validate:"gte=0"`
	MaxRoadDetourFactor  float64 `yaml:"max_road_detour_factor" validate:"gte=0"`
	MinDrivingDistance   float64 `yaml:"min_driving_distance" validate:"gte=0"`
	Workers              int     `yaml:"workers" validate:"gte=0,lte=1024"`
}

// Config is the root configuration document.
type Config struct {
	LogLevel string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Graph    GraphConfig   `yaml:"graph"`
	Build    BuildConfig   `yaml:"build"`
	Journey  JourneyConfig `yaml:"journey"`
}

var validate = validator.New()

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a YAML configuration file. Unset fields take
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Graph.CellSize = defaultOr(c.Graph.CellSize, spatial.DefaultCellSize)
	c.Build.NodeSpacing = defaultOr(c.Build.NodeSpacing, roadbuild.DefaultNodeSpacing)
	c.Build.SnapTolerance = defaultOr(c.Build.SnapTolerance, roadbuild.DefaultSnapTolerance)
	c.Build.ConnectionThreshold = defaultOr(c.Build.ConnectionThreshold, roadbuild.DefaultConnectionThreshold)
	c.Journey.LongJourneyThreshold = defaultOr(c.Journey.LongJourneyThreshold, journey.DefaultLongJourneyThreshold)
	c.Journey.RoadEntryThreshold = defaultOr(c.Journey.RoadEntryThreshold, journey.DefaultRoadEntryThreshold)
	c.Journey.MaxRoadDetourFactor = defaultOr(c.Journey.MaxRoadDetourFactor, journey.DefaultMaxRoadDetourFactor)
	c.Journey.MinDrivingDistance = defaultOr(c.Journey.MinDrivingDistance, journey.DefaultMinDrivingDistance)
	if c.Journey.Workers == 0 {
		c.Journey.Workers = 4
	}
}

// Validate runs cross-field range checks beyond what struct tags express.
func (c *Config) Validate() error {
	return NewConfigValidator("Config").
		PositiveFloat("graph.cell_size", c.Graph.CellSize).
		PositiveFloat("build.node_spacing", c.Build.NodeSpacing).
		PositiveFloat("build.snap_tolerance", c.Build.SnapTolerance).
		PositiveFloat("build.connection_threshold", c.Build.ConnectionThreshold).
		Custom("build.snap_tolerance", func() error {
			if c.Build.SnapTolerance >= c.Build.NodeSpacing {
				return fmt.Errorf("snap tolerance %.2f must be below node spacing %.2f", c.Build.SnapTolerance, c.Build.NodeSpacing)
			}
			return nil
		}).
		PositiveFloat("journey.long_journey_threshold", c.Journey.LongJourneyThreshold).
		PositiveFloat("journey.road_entry_threshold", c.Journey.RoadEntryThreshold).
		Custom("journey.max_road_detour_factor", func() error {
			if c.Journey.MaxRoadDetourFactor < 1 {
				return fmt.Errorf("detour factor %.2f below 1 rejects every network route", c.Journey.MaxRoadDetourFactor)
			}
			return nil
		}).
		PositiveFloat("journey.min_driving_distance", c.Journey.MinDrivingDistance).
		Positive("journey.workers", c.Journey.Workers).
		Validate()
}

// GraphOptions converts to graph construction options.
func (c *Config) GraphOptions() graph.Config {
	return graph.Config{CellSize: c.Graph.CellSize}
}

// BuildSettings converts to roadbuild settings.
func (c *Config) BuildSettings() roadbuild.Settings {
	return roadbuild.Settings{
		NodeSpacing:         c.Build.NodeSpacing,
		SnapTolerance:       c.Build.SnapTolerance,
		ConnectionThreshold: c.Build.ConnectionThreshold,
	}
}

// JourneySettings converts to journey planner settings.
func (c *Config) JourneySettings() journey.Settings {
	return journey.Settings{
		LongJourneyThreshold: c.Journey.LongJourneyThreshold,
		RoadEntryThreshold:   c.Journey.RoadEntryThreshold,
		MaxRoadDetourFactor:  c.Journey.MaxRoadDetourFactor,
		MinDrivingDistance:   c.Journey.MinDrivingDistance,
	}
}

func defaultOr(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
}
