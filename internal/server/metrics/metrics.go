// Package metrics registers the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelStatus  = "status"
	LabelOutcome = "outcome"
	LabelState   = "state"
)

// Outcomes recorded for bookmark adds and metadata fetches.
const (
	OutcomeCreated     = "created"
	OutcomeExisting    = "existing"
	OutcomeInvalid     = "invalid_reference"
	OutcomeUnavailable = "metadata_unavailable"
	OutcomeError       = "error"

	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeCacheHit = "cache_hit"
	OutcomeRejected = "rejected"
)

// HTTP
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidmark",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vidmark",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vidmark",
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being served",
		},
	)
)

// Bookmarks and metadata
var (
	BookmarkAdds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidmark",
			Name:      "bookmark_adds_total",
			Help:      "Bookmark add requests by outcome",
		},
		[]string{LabelOutcome},
	)

	MetadataFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidmark",
			Name:      "metadata_fetches_total",
			Help:      "Video metadata lookups by outcome",
		},
		[]string{LabelOutcome},
	)

	MetadataFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vidmark",
			Name:      "metadata_fetch_duration_seconds",
			Help:      "Latency of calls to the video metadata provider",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vidmark",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	ThumbnailArchives = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidmark",
			Name:      "thumbnail_archives_total",
			Help:      "Thumbnail archive attempts by outcome",
		},
		[]string{LabelOutcome},
	)
)
