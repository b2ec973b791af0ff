package observability

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "philoatlas"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	apiInflight  prometheus.Gauge
	contentTypes *prometheus.CounterVec
	schemaCache  *prometheus.CounterVec
	cacheLatency *prometheus.HistogramVec
	graphSync    *prometheus.CounterVec
	rateLimited  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency in seconds by method/route/status.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "In-flight API requests.",
		}),
		contentTypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_type_requests_total",
			Help:      "API requests scoped to a content type, by type/method.",
		}, []string{"type", "method"}),
		schemaCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_cache_operations_total",
			Help:      "Metadata schema cache operations by backend/operation/result.",
		}, []string{"backend", "operation", "result"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schema_cache_operation_duration_seconds",
			Help:      "Metadata schema cache latency by backend/operation.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"backend", "operation"}),
		graphSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_mirror_operations_total",
			Help:      "Neo4j relationship mirror writes by operation/status.",
		}, []string{"operation", "status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}
	reg.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.contentTypes,
		m.schemaCache,
		m.cacheLatency,
		m.graphSync,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterDBStats exports connection pool statistics for db.
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	if m == nil || db == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveContentTypeRequest(contentType, method string) {
	if m == nil || contentType == "" {
		return
	}
	m.contentTypes.WithLabelValues(contentType, method).Inc()
}

// ObserveSchemaCache records one cache call. result is hit, miss, ok or error.
func (m *Metrics) ObserveSchemaCache(backend, operation, result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.schemaCache.WithLabelValues(backend, operation, result).Inc()
	m.cacheLatency.WithLabelValues(backend, operation).Observe(dur.Seconds())
}

func (m *Metrics) ObserveGraphSync(operation string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.graphSync.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.rateLimited.WithLabelValues(route).Inc()
}
