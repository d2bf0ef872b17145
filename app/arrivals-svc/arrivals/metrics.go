package arrivals

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's prometheus instruments on a private registry
type Collector struct {
	registry *prometheus.Registry

	VehiclesLoaded   prometheus.Gauge
	FeedFetchErrors  prometheus.Counter
	ArrivalsComputed prometheus.Counter
	PublishErrors    prometheus.Counter
	LoopDuration     prometheus.Histogram
}

// NewCollector builds and registers the service instruments
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		VehiclesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_vehicles_loaded",
			Help: "Vehicle positions loaded on the most recent feed poll.",
		}),
		FeedFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_feed_fetch_errors_total",
			Help: "Total vehicle feed polls that failed.",
		}),
		ArrivalsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_results_computed_total",
			Help: "Total arrival results computed across all watched stops.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_publish_errors_total",
			Help: "Total failures publishing arrival results.",
		}),
		LoopDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arrivals_loop_duration_seconds",
			Help:    "Time spent per monitor loop pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(c.VehiclesLoaded, c.FeedFetchErrors, c.ArrivalsComputed,
		c.PublishErrors, c.LoopDuration)
	return c
}

// Handler serves the registry in prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
