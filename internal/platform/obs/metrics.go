// Package obs holds the service's Prometheus collectors and timing helpers.
package obs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "operation_duration_seconds",
			Help:    "Duration of internal operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		},
		[]string{"op", "outcome"},
	)

	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Outbound requests to external providers by outcome.",
		},
		[]string{"upstream", "outcome"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache lookups by cache and outcome.",
		},
		[]string{"cache", "outcome"},
	)

	planStops = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trip_plan_stops",
			Help:    "Number of stops in produced trip plans.",
			Buckets: prometheus.LinearBuckets(0, 2, 16),
		},
	)

	partialPlans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trip_plan_partial_total",
			Help: "Trip plans that ran out of candidate stations before covering the distance.",
		},
	)

	catalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Station catalog loads by outcome.",
		},
		[]string{"outcome"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func IncUpstream(upstream string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamRequests.WithLabelValues(upstream, outcome).Inc()
}

func IncCacheHit(cache string)  { cacheResults.WithLabelValues(cache, "hit").Inc() }
func IncCacheMiss(cache string) { cacheResults.WithLabelValues(cache, "miss").Inc() }

func ObservePlan(stops int, complete bool) {
	planStops.Observe(float64(stops))
	if !complete {
		partialPlans.Inc()
	}
}

func IncCatalogReload(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	catalogReloads.WithLabelValues(outcome).Inc()
}
