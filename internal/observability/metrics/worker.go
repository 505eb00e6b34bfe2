package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics is the registry for the index worker process. It carries
// the job-level view; IndexJob satisfies the core's index metrics port.
type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobsInFlight prometheus.Gauge
	queueLag     *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholarshield",
			Subsystem: "worker",
			Name:      "index_jobs_total",
			Help:      "Handbook index jobs by result.",
		},
		[]string{"service", "result"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scholarshield",
			Subsystem: "worker",
			Name:      "index_job_duration_seconds",
			Help:      "Handbook index job duration in seconds by result.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "result"},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scholarshield",
			Subsystem: "worker",
			Name:      "index_jobs_in_flight",
			Help:      "Number of in-flight handbook index jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scholarshield",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between handbook upload and index job start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(jobsTotal, jobDuration, jobsInFlight, queueLag)

	return &WorkerMetrics{
		registry:     registry,
		service:      service,
		jobsTotal:    jobsTotal,
		jobDuration:  jobDuration,
		jobsInFlight: jobsInFlight,
		queueLag:     queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) IndexJob(result string) {
	if result == "" {
		result = "unknown"
	}
	m.jobsTotal.WithLabelValues(m.service, result).Inc()
}

func (m *WorkerMetrics) JobStarted() {
	m.jobsInFlight.Inc()
}

func (m *WorkerMetrics) JobFinished(duration time.Duration, err error) {
	m.jobsInFlight.Dec()

	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.jobDuration.WithLabelValues(m.service, result).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
