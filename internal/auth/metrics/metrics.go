// Package metrics exposes Prometheus counters for authentication outcomes
// and generic HTTP instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradepost/tradepost-auth/pkg/httpx"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	loginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome (success, failure, rate_limited).",
		},
		[]string{"outcome"},
	)

	tokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Tokens issued by flow (session, refresh, reset).",
		},
		[]string{"use"},
	)

	attemptLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempt_limited_total",
			Help: "Requests denied by the per-identity attempt limiter, by class.",
		},
		[]string{"class"},
	)
)

// Init registers all collectors with the default registry. Call once at
// startup; a second call panics on duplicate registration.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		loginAttemptsTotal,
		tokensIssuedTotal,
		attemptLimitedTotal,
	)
}

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveLogin counts a login attempt outcome.
func ObserveLogin(outcome string) {
	loginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTokenIssued counts a minted token by flow.
func ObserveTokenIssued(use string) {
	tokensIssuedTotal.WithLabelValues(use).Inc()
}

// ObserveAttemptLimited counts a denial from the attempt limiter.
func ObserveAttemptLimited(class string) {
	attemptLimitedTotal.WithLabelValues(class).Inc()
}

// Instrument records request rate, latency and in-flight count.
func Instrument() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpInFlight.Inc()
			start := time.Now()

			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(sw.code)

			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpInFlight.Dec()
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
