package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph store metrics
	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "physiokg_store_queries_total",
			Help: "Total number of graph store queries",
		},
		[]string{"query", "status"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "physiokg_store_query_duration_seconds",
			Help:    "Graph store query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"query"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "physiokg_store_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// Reasoning metrics
	PartialDataWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "physiokg_partial_data_warnings_total",
			Help: "Entities or fields skipped because their stored data was malformed",
		},
		[]string{"category"},
	)

	ReasoningRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "physiokg_reasoning_requests_total",
			Help: "Reasoning generations by outcome",
		},
		[]string{"outcome"},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "physiokg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "physiokg_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
