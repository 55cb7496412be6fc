package metrics

import (
	"time"

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

	FitScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundingos_fit_score",
			Help:    "Distribution of computed opportunity fit scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"eligible"},
	)

	IntentClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundingos_intent_classifications_total",
			Help: "Classified chat messages by intent",
		},
		[]string{"intent", "follow_up"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundingos_cache_requests_total",
			Help: "Record cache lookups by result",
		},
		[]string{"kind", "result"},
	)

	DeadlineAlertsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundingos_deadline_alerts_published_total",
			Help: "Deadline alerts published by urgency",
		},
		[]string{"urgency"},
	)
)

// ObserveJob records one finished job. An empty errorCode counts as success.
func ObserveJob(taskType string, started time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

func ObserveFitScore(score int, eligible bool) {
	label := "false"
	if eligible {
		label = "true"
	}
	FitScores.WithLabelValues(label).Observe(float64(score))
}

func ObserveIntent(intent string, followUp bool) {
	label := "false"
	if followUp {
		label = "true"
	}
	IntentClassifications.WithLabelValues(intent, label).Inc()
}
