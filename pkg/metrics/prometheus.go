package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SearchesTotal     prometheus.Counter
	OffersCollected   prometheus.Counter
	FlightsPersisted  prometheus.Counter
	PredictionsTotal  prometheus.Counter
	RegionFailures    *prometheus.CounterVec
	SearchDuration    prometheus.Histogram
	ObservationErrors prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "The total number of flight searches run",
		}),
		OffersCollected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_collected_total",
			Help:      "The total number of raw offers collected across all regions",
		}),
		FlightsPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_persisted_total",
			Help:      "The total number of deduplicated flights persisted",
		}),
		PredictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "The total number of price predictions produced",
		}),
		RegionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_failures_total",
			Help:      "The total number of skipped regions by region code",
		}, []string{"region"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time taken by the region fan-out and aggregation",
			Buckets:   prometheus.DefBuckets,
		}),
		ObservationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observation_errors_total",
			Help:      "The total number of price observations that failed to persist",
		}),
	}
}
