// Package metrics exports Prometheus metrics infrastructure for the
// application. Grounded on the teacher's internal/metrics package
// (lcgerke-schedCU/reimplement/internal/metrics/metrics.go): a Registry
// holding every counter/histogram/gauge, registered up front and exposed
// through an HTTP handler. Retargeted from the import-job domain (scrape
// jobs, ODS/Amion service calls) to generation runs and the REST surface.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics and provides helper methods for
// recording them.
type Registry struct {
	registry prometheus.Registerer

	httpRequestsTotal      prometheus.CounterVec
	httpErrorsTotal        prometheus.CounterVec
	generationRunsTotal    prometheus.CounterVec
	constraintRejections   prometheus.CounterVec

	httpRequestDuration  prometheus.HistogramVec
	generationDuration   prometheus.HistogramVec

	activeGenerations prometheus.GaugeVec
	assignmentsTotal  prometheus.GaugeVec
	fairnessScore     prometheus.GaugeVec

	mu sync.RWMutex
}

// New creates and registers all application metrics using the global
// registry. It panics if any metric fails to register.
func New() *Registry {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all application metrics with a
// custom registry. Used in tests to avoid colliding with the global
// DefaultRegisterer across test runs.
func NewWithRegistry(registerer prometheus.Registerer) *Registry {
	m := &Registry{registry: registerer}

	m.httpRequestsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests by method and path"},
		[]string{"method", "path"},
	)
	m.registry.MustRegister(&m.httpRequestsTotal)

	m.httpErrorsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_errors_total", Help: "Total HTTP errors by error code"},
		[]string{"error_code"},
	)
	m.registry.MustRegister(&m.httpErrorsTotal)

	m.generationRunsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "generation_runs_total", Help: "Total generation runs by outcome"},
		[]string{"outcome"},
	)
	m.registry.MustRegister(&m.generationRunsTotal)

	m.constraintRejections = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "constraint_rejections_total", Help: "Total candidate assignments rejected by the constraint checker"},
		[]string{"version"},
	)
	m.registry.MustRegister(&m.constraintRejections)

	m.httpRequestDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
	m.registry.MustRegister(&m.httpRequestDuration)

	m.generationDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "generation_duration_seconds", Help: "Generation run duration in seconds", Buckets: prometheus.DefBuckets},
		[]string{},
	)
	m.registry.MustRegister(&m.generationDuration)

	m.activeGenerations = *prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "active_generations", Help: "Generation runs currently in flight"},
		[]string{},
	)
	m.registry.MustRegister(&m.activeGenerations)

	m.assignmentsTotal = *prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "assignments_total", Help: "Assignment rows produced by the most recent generation run"},
		[]string{"version"},
	)
	m.registry.MustRegister(&m.assignmentsTotal)

	m.fairnessScore = *prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "fairness_score", Help: "Fairness score (0..1) of the most recent generation run"},
		[]string{"version"},
	)
	m.registry.MustRegister(&m.fairnessScore)

	return m
}

// RecordHTTPRequest records one HTTP request's count and latency.
func (m *Registry) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.httpRequestsTotal.WithLabelValues(method, path).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, statusCodeLabel(statusCode)).Observe(duration)
}

// RecordHTTPError records a request that ended in an API error envelope.
func (m *Registry) RecordHTTPError(errorCode string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.httpErrorsTotal.WithLabelValues(errorCode).Inc()
}

// RecordGenerationRun records one completed run's outcome ("success",
// "failed", "cancelled") and duration, and the constraint rejection count
// and summary gauges for the version it produced.
func (m *Registry) RecordGenerationRun(outcome string, versionNumber int, duration float64, rejections, assignments int, fairness float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.generationRunsTotal.WithLabelValues(outcome).Inc()
	m.generationDuration.WithLabelValues().Observe(duration)

	label := versionLabel(versionNumber)
	m.constraintRejections.WithLabelValues(label).Add(float64(rejections))
	m.assignmentsTotal.WithLabelValues(label).Set(float64(assignments))
	m.fairnessScore.WithLabelValues(label).Set(fairness)
}

// IncrementActiveGenerations marks one more run in flight.
func (m *Registry) IncrementActiveGenerations() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.activeGenerations.WithLabelValues().Inc()
}

// DecrementActiveGenerations marks one run no longer in flight.
func (m *Registry) DecrementActiveGenerations() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.activeGenerations.WithLabelValues().Dec()
}

// Handler returns an HTTP handler that serves metrics from this registry
// in Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry.(prometheus.Gatherer), promhttp.HandlerOpts{})
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

func versionLabel(number int) string {
	if number <= 0 {
		return "unknown"
	}
	return strconv.Itoa(number)
}
