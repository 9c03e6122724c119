package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics for the gateway surface.
var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtbook_http_requests_total",
		Help: "Number of HTTP requests handled by the gateway.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "courtbook_http_request_duration_seconds",
		Help:    "Latency of HTTP requests handled by the gateway.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Session directory cache metrics.
var (
	DirectoryHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_directory_hits_total",
		Help: "Session directory lookups served from a fresh cache entry.",
	})

	DirectoryMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_directory_misses_total",
		Help: "Session directory lookups that required an upstream fetch.",
	})

	DirectoryStaleServes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_directory_stale_serves_total",
		Help: "Session directory lookups answered with stale data after an upstream failure.",
	})

	DirectoryEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_directory_evictions_total",
		Help: "Session directory entries evicted after the retention window.",
	})
)

// Upstream backend metrics.
var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtbook_upstream_requests_total",
		Help: "Requests issued to the booking backend.",
	}, []string{"endpoint", "status"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "courtbook_upstream_request_duration_seconds",
		Help:    "Latency of requests to the booking backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// Booking workflow outcomes: accepted, rejected or invalid (failed local
// validation before any network call).
var BookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "courtbook_booking_outcomes_total",
	Help: "Booking negotiation outcomes.",
}, []string{"outcome"})
