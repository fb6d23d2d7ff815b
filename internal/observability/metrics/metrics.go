package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workshop_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_store_operations_total",
		Help: "Entity store operations by outcome (ok, business_error, fallback, default)",
	}, []string{"operation", "result"})

	storeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_store_fallback_total",
		Help: "Operations served from the fallback dataset, by reason",
	}, []string{"operation", "reason"})

	storeCircuitState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "workshop_store_circuit_state",
		Help: "Entity store circuit breaker state (0 closed, 1 open, 2 half-open)",
	})

	gateRedirects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_session_gate_redirects_total",
		Help: "Page requests redirected to the login page",
	})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	appointmentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_appointment_transitions_total",
		Help: "Applied appointment status transitions",
	}, []string{"from", "to"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveStoreOperation counts one facade call with its outcome.
func ObserveStoreOperation(operation, result string) {
	storeOperations.WithLabelValues(operation, result).Inc()
}

// ObserveFallback counts a degradation to the fallback dataset.
func ObserveFallback(operation, reason string) {
	storeFallbacks.WithLabelValues(operation, reason).Inc()
}

// SetCircuitState publishes the breaker state as a number.
func SetCircuitState(state int) {
	storeCircuitState.Set(float64(state))
}

// ObserveGateRedirect counts a redirect issued by the session gate.
func ObserveGateRedirect() {
	gateRedirects.Inc()
}

// ObserveLogin counts a login attempt; result is success, failure or rate_limited.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveAppointmentTransition counts an applied status change.
func ObserveAppointmentTransition(from, to string) {
	appointmentTransitions.WithLabelValues(from, to).Inc()
}
