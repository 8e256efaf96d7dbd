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

	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_catalog_fetch_total",
			Help: "Catalog fetches by source and status (ok, error)",
		},
		[]string{"source", "status"},
	)

	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_catalog_fetch_duration_seconds",
			Help:    "Catalog fetch latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_catalog_items",
			Help: "Number of catalog items seen by the last successful fetch",
		},
	)

	ScoringOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_scoring_outcomes_total",
			Help: "Scoring runs by outcome status",
		},
		[]string{"status"},
	)

	ScoringResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_scoring_results",
			Help:    "Number of ranked results returned per scoring run",
			Buckets: []float64{0, 1, 3, 5, 10, 15},
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_results_emails_total",
			Help: "Results emails by status (sent, duplicate, error)",
		},
		[]string{"status"},
	)

	LeadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_leads_captured_total",
			Help: "Captured emails by kind (quiz, newsletter)",
		},
		[]string{"kind"},
	)
)
