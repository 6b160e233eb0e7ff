package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AnalysesTotal.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalid         = "invalid"
	OutcomeBackendError    = "backend_error"
	OutcomePersistenceFail = "persistence_error"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_analyses_total",
			Help: "Resume analyses handled, by outcome",
		},
		[]string{"outcome"},
	)

	AnalysisServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_service_request_duration_seconds",
			Help:    "Latency of Analysis Service calls",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"status"},
	)

	ReadinessScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "career_readiness_score",
			Help:    "Distribution of normalized readiness scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	CheckpointsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "career_checkpoints_completed_total",
			Help: "Checkpoints newly marked complete",
		},
	)

	ProgressWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "career_progress_write_conflicts_total",
			Help: "Optimistic concurrency conflicts on progress writes",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "analysis_circuit_breaker_open",
			Help: "1 when the Analysis Service circuit breaker is open",
		},
		[]string{"name"},
	)
)
