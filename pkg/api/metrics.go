package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Conversion metrics
	conversionsTotal   *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec

	// Label lookup metrics
	labelLookupsTotal *prometheus.CounterVec

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		// HTTP request metrics
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramkit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paramkit_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paramkit_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		// Conversion metrics
		conversionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramkit_conversions_total",
				Help: "Total number of param conversions",
			},
			[]string{"direction", "status"},
		),

		conversionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paramkit_conversion_duration_seconds",
				Help:    "Param conversion duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),

		// Label lookup metrics
		labelLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramkit_label_lookups_total",
				Help: "Total number of hash label lookups",
			},
			[]string{"status"},
		),

		// Authentication metrics
		authRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramkit_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordConversion records a param conversion between the binary and
// XML forms. Direction is "disasm" or "asm".
func (m *Metrics) RecordConversion(direction string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.conversionsTotal.WithLabelValues(direction, status).Inc()
	m.conversionDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

// RecordLabelLookup records a hash label lookup
func (m *Metrics) RecordLabelLookup(known bool) {
	status := "known"
	if !known {
		status = "unknown"
	}
	m.labelLookupsTotal.WithLabelValues(status).Inc()
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Record request in flight
		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Call the original handler
		handler(rw, r)

		// Record metrics
		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if API key is present
			apiKey := r.Header.Get("X-API-Key")
			hasAPIKey := apiKey != ""

			// Call the auth middleware
			next(h).ServeHTTP(w, r)

			// Record auth metrics based on response status
			if rw, ok := w.(*responseWriter); ok {
				success := rw.statusCode != http.StatusUnauthorized
				if hasAPIKey {
					m.RecordAuthRequest(success)
				}
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
