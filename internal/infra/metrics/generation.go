package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(generationJobsTotal, generationStageSeconds, generationRejectedTotal)
}

var (
	generationJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_jobs_total",
			Help: "Generation jobs finished, labeled by terminal status.",
		},
		[]string{"status"}, // 'completed', 'error'
	)

	generationStageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_stage_seconds",
			Help:    "Time spent in each generation stage.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // 'fetching_transcript', 'generating_summary'
	)

	generationRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_rejected_total",
			Help: "Generation requests rejected before a job started.",
		},
		[]string{"reason"}, // 'in_progress', 'queue_full'
	)
)

func IncGenerationJob(status string) {
	generationJobsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	generationStageSeconds.WithLabelValues(norm(stage)).Observe(d.Seconds())
}

func IncGenerationRejected(reason string) {
	generationRejectedTotal.WithLabelValues(norm(reason)).Inc()
}
