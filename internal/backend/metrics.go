package backend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "qdemos"
	subsystem        = "backend"
)

var (
	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "jobs_total",
			Help:      "Total number of finished jobs",
		},
		[]string{"backend", "status"}, // status: "DONE", "ERROR"
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Time taken to execute a job",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	shotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "shots_total",
			Help:      "Total number of shots sampled",
		},
		[]string{"backend"},
	)

	pendingJobs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "pending_jobs",
			Help:      "Number of jobs currently queued or running",
		},
		[]string{"backend"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"route", "code"},
	)
)

func recordJob(backend string, status JobStatus, took time.Duration, shots int) {
	jobsTotal.WithLabelValues(backend, string(status)).Inc()
	jobDuration.WithLabelValues(backend).Observe(took.Seconds())
	if status == JobDone && shots > 0 {
		shotsTotal.WithLabelValues(backend).Add(float64(shots))
	}
}
