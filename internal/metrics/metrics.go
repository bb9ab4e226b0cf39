package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionState tracks the current connectivity classification
	// (0=unknown, 1=connected, 2=disconnected, 3=reconnecting).
	ConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tapedeck_connection_state",
			Help: "Current connectivity state of the upstream archive",
		},
	)

	// ProbeFailures tracks consecutive failed connectivity probes
	ProbeFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tapedeck_probe_consecutive_failures",
			Help: "Consecutive failed connectivity probes",
		},
	)

	// StateTransitions tracks connectivity transitions by target state
	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_state_transitions_total",
			Help: "Total connectivity state transitions",
		},
		[]string{"state"},
	)

	// ArchiveRequests tracks outbound archive API calls per operation
	ArchiveRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_archive_requests_total",
			Help: "Total archive API requests dispatched",
		},
		[]string{"operation"},
	)

	// ArchiveErrors tracks archive API failures per operation and kind
	ArchiveErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_archive_errors_total",
			Help: "Total archive API errors",
		},
		[]string{"operation", "error_type"},
	)

	// ArchiveRetries tracks retry attempts per operation
	ArchiveRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_archive_retries_total",
			Help: "Total archive API retries",
		},
		[]string{"operation"},
	)

	// ArchiveLatency tracks archive API round-trip latency
	ArchiveLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tapedeck_archive_latency_seconds",
			Help:    "Archive API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CacheHits tracks metadata cache hits and misses
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_cache_lookups_total",
			Help: "Metadata cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
