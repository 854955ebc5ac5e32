// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed per task type",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Jobs currently being handled per task type",
		},
		[]string{"task_type"},
	)
)

var (
	KYCDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_decisions_total",
			Help: "Identity verification decisions by outcome",
		},
		[]string{"outcome"},
	)

	KYCFraudSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_fraud_signals_total",
			Help: "Fraud signals raised while screening identity documents",
		},
		[]string{"signal"},
	)

	PlacesLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "places_lookups_total",
			Help: "Business lookups by search status",
		},
		[]string{"status"},
	)

	ArtifactsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artifacts_saved_total",
			Help: "Session artifacts written to the store",
		},
	)
)

const (
	OutcomeVerified   = "verified"
	OutcomeMismatch   = "mismatch"
	OutcomeFraudulent = "fraudulent"
)
