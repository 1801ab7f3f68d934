// Package metrics provides Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "housekeeping_api"

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	registry *prometheus.Registry

	// Validation metrics
	Validations *prometheus.CounterVec
	FieldErrors *prometheus.CounterVec

	// Storage metrics
	StorageOps *prometheus.CounterVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
}

// New creates the metrics on a fresh registry, so tests and multiple
// servers in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of record validations by schema and result",
		}, []string{"schema", "result"}),
		FieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_errors_total",
			Help:      "Total number of field errors by schema and kind",
		}, []string{"schema", "kind"}),
		StorageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Total number of storage operations by collection, operation and result",
		}, []string{"collection", "op", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.Validations,
		m.FieldErrors,
		m.StorageOps,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordValidation counts one validation and its field errors by kind.
func (m *Metrics) RecordValidation(schemaName string, errorKinds []string) {
	if len(errorKinds) == 0 {
		m.Validations.WithLabelValues(schemaName, "ok").Inc()
		return
	}
	m.Validations.WithLabelValues(schemaName, "invalid").Inc()
	for _, k := range errorKinds {
		m.FieldErrors.WithLabelValues(schemaName, k).Inc()
	}
}

// RecordStorage counts one storage operation.
func (m *Metrics) RecordStorage(collection, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StorageOps.WithLabelValues(collection, op, result).Inc()
}

// Instrument wraps h and observes its duration under route.
func (m *Metrics) Instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		m.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
