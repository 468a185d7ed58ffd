// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songscape_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songscape_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Artist lookups. outcome is a resolver tier, "list" or "none".
	ArtistQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songscape_artist_queries_total",
			Help: "Artist endpoint queries by resolution outcome",
		},
		[]string{"outcome"},
	)

	// Remote providers

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songscape_provider_requests_total",
			Help: "Remote provider calls by provider, method and outcome",
		},
		[]string{"provider", "method", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songscape_provider_request_duration_seconds",
			Help:    "Remote provider call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "method"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "songscape_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Corpus

	CorpusSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "songscape_corpus_entries",
			Help: "Entries loaded from each corpus artifact",
		},
		[]string{"artifact"},
	)
)
