package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Business metrics
	accountRegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_registrations_total",
			Help: "Total number of account registrations",
		},
	)

	accountLoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_logins_total",
			Help: "Total number of successful logins",
		},
	)

	accountLoginsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_logins_failed_total",
			Help: "Total number of failed login attempts",
		},
	)

	accountEmailVerificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_email_verifications_total",
			Help: "Total number of redeemed email verification tokens",
		},
	)

	accountPasswordResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_password_resets_total",
			Help: "Total number of completed password resets",
		},
	)

	mailSendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_send_failures_total",
			Help: "Outbound mail deliveries that failed (non-fatal to the request)",
		},
		[]string{"kind"},
	)

	// Dependency health metrics
	dependencyHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_health",
			Help: "Health status of dependencies (1 = healthy, 0 = unhealthy)",
		},
		[]string{"dependency"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordRegistration increments registration counter
func RecordRegistration() {
	accountRegistrationsTotal.Inc()
}

// RecordLogin increments login counter
func RecordLogin() {
	accountLoginsTotal.Inc()
}

// RecordLoginFailed increments failed login counter
func RecordLoginFailed() {
	accountLoginsFailed.Inc()
}

// RecordEmailVerification increments email verification counter
func RecordEmailVerification() {
	accountEmailVerificationsTotal.Inc()
}

// RecordPasswordReset increments password reset counter
func RecordPasswordReset() {
	accountPasswordResetsTotal.Inc()
}

// RecordMailFailure counts a swallowed mail delivery failure by kind
// ("verification" or "password_reset").
func RecordMailFailure(kind string) {
	mailSendFailures.WithLabelValues(kind).Inc()
}

// SetDependencyHealth sets the health status of a dependency
func SetDependencyHealth(dependency string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	dependencyHealth.WithLabelValues(dependency).Set(value)
}

// MetricsHandler returns the Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
