// Package metrics provides Prometheus metrics for the file assistant.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileassist_tool_calls_total",
			Help: "Total number of tool calls executed",
		},
		[]string{"tool"},
	)

	toolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fileassist_tool_call_duration_seconds",
			Help:    "Tool call duration in seconds, including any index rebuild",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	modelCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileassist_model_calls_total",
			Help: "Total number of language model calls",
		},
		[]string{"model", "status"},
	)

	modelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fileassist_model_call_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	indexRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fileassist_index_rebuild_duration_seconds",
			Help:    "Time to walk all roots and persist the index",
			Buckets: prometheus.DefBuckets,
		},
	)

	indexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fileassist_index_size",
			Help: "Number of paths in the current index snapshot",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileassist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fileassist_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveToolCall records one executed tool call.
func ObserveToolCall(tool string, duration time.Duration) {
	toolCallsTotal.WithLabelValues(tool).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// ObserveModelCall records one round-trip to the model.
func ObserveModelCall(model string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	modelCallsTotal.WithLabelValues(model, status).Inc()
	modelCallDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// ObserveRebuild records a full index rebuild and the resulting index size.
func ObserveRebuild(size int, duration time.Duration) {
	indexRebuildDuration.Observe(duration.Seconds())
	SetIndexSize(size)
}

// SetIndexSize sets the current index size.
func SetIndexSize(size int) {
	indexSize.Set(float64(size))
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, routeLabel(r), rw.statusCode, time.Since(start))
	})
}

// unmatchedRoute labels requests no route handled, keeping the path label
// bounded no matter what clients send.
const unmatchedRoute = "unmatched"

// routeLabel returns the ServeMux pattern that served r without its method.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return unmatchedRoute
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}
