package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "transitions_total", Help: "Ride lifecycle transitions by resulting status"},
		[]string{"status"},
	)
	ActiveRides  = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ride_booking", Name: "active_rides", Help: "Rides in a non-terminal status at the last tick"})
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ride_booking",
		Name:      "scheduler_tick_duration_seconds",
		Help:      "Lifecycle scheduler tick latency",
		Buckets:   prometheus.DefBuckets,
	})
	Subscribers   = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ride_booking", Name: "subscribers", Help: "Live ride update subscriptions"})
	RidesCreated  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "rides_created_total", Help: "Total rides created"})
	MatchFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "match_failures_total", Help: "Ride requests refused for lack of drivers"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_booking",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
