package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the transport core. A nil *Registry is valid
// everywhere a Registry is accepted: every record helper no-ops on nil, so
// instrumentation stays optional for hosts that do not scrape.
type Registry struct {
	// Graph metrics
	GraphNodesTotal        prometheus.Gauge
	GraphEdgesTotal        prometheus.Gauge
	GraphOperationsTotal   *prometheus.CounterVec
	GraphOperationDuration *prometheus.HistogramVec
	CongestionCrossings    *prometheus.CounterVec

	// Search metrics
	SearchesTotal       *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	SearchNodesExpanded prometheus.Histogram

	// Journey metrics
	JourneysTotal *prometheus.CounterVec
	JourneyLegs   prometheus.Histogram

	// Build metrics
	BuildsTotal      prometheus.Counter
	BuildDuration    prometheus.Histogram
	BuildRoadsTotal  prometheus.Counter
	BuildCrossings   prometheus.Counter
	BuildSkippedRoads prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// NewRegistry creates a registry with all metrics initialized against a
// fresh prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initGraphMetrics()
	r.initSearchMetrics()
	r.initJourneyMetrics()
	r.initBuildMetrics()
	return r
}

// Default returns the global registry instance.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// PrometheusRegistry exposes the underlying registry so hosts can mount a
// scrape handler or gather programmatically.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
