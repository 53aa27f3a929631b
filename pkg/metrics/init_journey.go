package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initJourneyMetrics() {
	r.JourneysTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityroute_journeys_total",
			Help: "Total number of planned journeys",
		},
		[]string{"kind"},
	)

	r.JourneyLegs = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cityroute_journey_legs",
			Help:    "Legs per planned journey",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)
}
