package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	casesAssessedTotal *prometheus.CounterVec
	caseDuration       *prometheus.HistogramVec
	stageFailuresTotal *prometheus.CounterVec
	indexJobsTotal     *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholarshield",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scholarshield",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scholarshield",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	casesAssessedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholarshield",
			Subsystem: "cases",
			Name:      "assessed_total",
			Help:      "Total case assessments by risk level and terminal status.",
		},
		[]string{"service", "risk_level", "status"},
	)
	caseDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scholarshield",
			Subsystem: "cases",
			Name:      "duration_seconds",
			Help:      "Case assessment duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	stageFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholarshield",
			Subsystem: "cases",
			Name:      "stage_failures_total",
			Help:      "Failures by pipeline stage, contained or fatal.",
		},
		[]string{"service", "stage"},
	)
	indexJobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholarshield",
			Subsystem: "handbook",
			Name:      "index_jobs_total",
			Help:      "Handbook index jobs by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		casesAssessedTotal,
		caseDuration,
		stageFailuresTotal,
		indexJobsTotal,
	)

	return &ServerMetrics{
		registry:           registry,
		service:            service,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		casesAssessedTotal: casesAssessedTotal,
		caseDuration:       caseDuration,
		stageFailuresTotal: stageFailuresTotal,
		indexJobsTotal:     indexJobsTotal,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case path == "/api/v1/cases/export":
		return path
	case strings.HasPrefix(path, "/api/v1/cases/"):
		return "/api/v1/cases/{case_id}"
	case strings.HasPrefix(path, "/api/v1/handbooks/"):
		return "/api/v1/handbooks/{handbook_id}"
	default:
		return path
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
