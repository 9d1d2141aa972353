package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IcingaRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meerkat_icinga_requests_total",
			Help: "Icinga API requests by outcome",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	IcingaRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meerkat_icinga_request_duration_seconds",
			Help:    "Latency of Icinga API requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meerkat_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	Polls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meerkat_polls_total",
			Help: "Element poll cycles by outcome",
		},
		[]string{"result"}, // "ok", "error", "stale"
	)

	ActivePollers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meerkat_active_pollers",
			Help: "Number of running selector pollers",
		},
	)

	AlertsPlayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meerkat_alerts_played_total",
			Help: "Alert sounds played by state",
		},
		[]string{"state"},
	)

	Events = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meerkat_events_total",
			Help: "Server-sent events received from Meerkat by stream",
		},
		[]string{"stream"},
	)
)
