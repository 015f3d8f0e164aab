package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// LoginAttempts counts login attempts by outcome (success, invalid, forbidden, error).
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ContentMutations counts successful writes by collection (posts, papers) and action.
	ContentMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_mutations_total",
			Help: "Successful content writes by collection and action",
		},
		[]string{"collection", "action"},
	)
)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal, LoginAttempts, ContentMutations)
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

func IncLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

func IncMutation(collection, action string) {
	ContentMutations.WithLabelValues(collection, action).Inc()
}
