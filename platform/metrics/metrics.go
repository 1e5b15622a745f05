// Package metrics registers Prometheus collectors for the matching engine.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MatchEvaluations counts trigger runs by trigger kind and outcome.
	MatchEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_evaluations_total",
			Help: "Total number of lead/property evaluation runs",
		},
		[]string{"trigger", "outcome"},
	)

	// MatchCandidates observes the pruned candidate set size per run.
	MatchCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_candidates",
			Help:    "Number of candidates considered per evaluation run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"trigger"},
	)

	// MatchDuration observes wall time per evaluation run.
	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matching_evaluation_duration_seconds",
			Help: "Duration of evaluation runs in seconds",
		},
		[]string{"trigger"},
	)

	// NotificationsCreated counts stored notifications by kind.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_notifications_created_total",
			Help: "Total number of match notifications created",
		},
		[]string{"kind"},
	)

	// PairFailures counts per-pair failures inside a batch by error kind.
	PairFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_pair_failures_total",
			Help: "Total number of failed pair evaluations",
		},
		[]string{"kind"},
	)

	// LifecycleTransitions counts lifecycle operations by action.
	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_lifecycle_transitions_total",
			Help: "Total number of notifications moved between pending and resolved",
		},
		[]string{"action"},
	)
)

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
