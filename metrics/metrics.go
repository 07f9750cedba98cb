// Package metrics provides Prometheus collectors for the price service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the namespace for all pricewatch metrics.
const Namespace = "pricewatch"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Scrape metrics
	ScrapesTotal          *prometheus.CounterVec
	ScrapeDurationSeconds *prometheus.HistogramVec
	ReadinessMisses       *prometheus.CounterVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Result metrics
	RecordsCollected *prometheus.GaugeVec
	LayoutDistance   prometheus.Gauge
	LayoutDrifts     prometheus.Counter

	// HTTP metrics
	RequestsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ScrapesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "scrapes_total",
				Help:      "Total number of scrape cycles by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		ScrapeDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Duration of scrape cycles in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s to 64s
			},
			[]string{"provider"},
		),
		ReadinessMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "readiness_misses_total",
				Help:      "Snapshots taken before price content appeared",
			},
			[]string{"provider"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Result cache lookups by outcome",
			},
			[]string{"result"},
		),
		RecordsCollected: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "records",
				Help:      "Records in the latest result set by category",
			},
			[]string{"category"},
		),
		LayoutDistance: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "layout",
				Name:      "distance",
				Help:      "Hamming distance between the last two layout fingerprints",
			},
		),
		LayoutDrifts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "layout",
				Name:      "drifts_total",
				Help:      "Number of detected page structure changes",
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}
