// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RosterMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_mutations_total",
			Help: "Total number of roster mutations",
		},
		[]string{"entity", "action"},
	)

	ScoreEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_events_total",
			Help: "Total number of score mutations",
		},
		[]string{"subject", "action"},
	)

	ScorePctHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "score_pct",
			Help:    "Distribution of normalized scores (0-10 scale)",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
		[]string{"subject"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
