// Package metrics exposes the Prometheus instrumentation of the HTTP
// API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vitrine_http_requests_total",
		Help: "HTTP requests processed, by method, route pattern and status code.",
	},
	[]string{"method", "route", "code"},
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "vitrine_http_request_duration_seconds",
		Help:    "HTTP request latency, by route pattern.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route"},
)

// RegistrationsTotal counts accounts created through the API.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "vitrine_registrations_total",
		Help: "Accounts created.",
	},
)

// LoginsTotal counts login attempts by outcome.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vitrine_logins_total",
		Help: "Login attempts, by outcome.",
	},
	[]string{"result"},
)

// PaymentsTotal counts processed payments by final status.
var PaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vitrine_payments_total",
		Help: "Payments processed, by status.",
	},
	[]string{"status"},
)

// Middleware records a counter and a latency observation per request.
// The route label is the chi pattern, so path parameters do not explode
// the cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unknown"
		}
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
