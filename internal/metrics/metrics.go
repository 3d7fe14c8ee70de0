package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FilterRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spotter_filter_runs_total",
		Help: "Filter engine invocations.",
	})
	GeocodeCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spotter_geocode_cache_hits_total",
		Help: "Geocode queries answered from the session cache.",
	})
	GeocodeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spotter_geocode_cache_misses_total",
		Help: "Geocode queries sent to the upstream service.",
	})
	GeocodeFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spotter_geocode_failures_total",
		Help: "Geocode requests that errored or returned no match.",
	})
	RecordsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spotter_records_dropped_total",
		Help: "Raw location entries rejected by the validator.",
	})
)

func init() {
	prometheus.MustRegister(
		FilterRunsTotal,
		GeocodeCacheHitsTotal,
		GeocodeCacheMissesTotal,
		GeocodeFailuresTotal,
		RecordsDroppedTotal,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
