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
			Help: "Total number of jobs completed by worker",
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
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	EligibilityEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_evaluations_total",
			Help: "Total number of eligibility evaluations by verdict",
		},
		[]string{"result"},
	)

	ModelWeightResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_weight_resolutions_total",
			Help: "Model weight resolutions by source (scholarship, global, fallback)",
		},
		[]string{"source"},
	)

	ModelWeightCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_weight_cache_lookups_total",
			Help: "Model weight cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	PredictionProbability = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_probability",
			Help:    "Distribution of predicted approval probabilities",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)
)

// RecordEligibility counts one eligibility verdict.
func RecordEligibility(passed bool) {
	if passed {
		EligibilityEvaluations.WithLabelValues("eligible").Inc()
		return
	}
	EligibilityEvaluations.WithLabelValues("ineligible").Inc()
}
