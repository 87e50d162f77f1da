// Package metrics provides Prometheus metrics for the gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rate limit decision outcomes.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// Secret fetch results.
const (
	SecretHit     = "hit"
	SecretFetched = "fetched"
	SecretAbsent  = "absent"
	SecretError   = "error"
)

var (
	// RateLimitDecisionsTotal counts rate limit checks by outcome.
	RateLimitDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Total number of rate limit checks by outcome",
		},
		[]string{"outcome"},
	)

	// SecretFetchesTotal counts API key lookups by result.
	SecretFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secret_fetches_total",
			Help: "Total number of API key lookups by result",
		},
		[]string{"result"},
	)

	// SubmissionsTotal counts accepted submissions by status.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of accepted submissions by status",
		},
		[]string{"status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRateLimitDecision records the outcome of a rate limit check.
func RecordRateLimitDecision(outcome string) {
	RateLimitDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSecretFetch records the result of an API key lookup.
func RecordSecretFetch(result string) {
	SecretFetchesTotal.WithLabelValues(result).Inc()
}

// RecordSubmission records an accepted submission.
func RecordSubmission(status string) {
	SubmissionsTotal.WithLabelValues(status).Inc()
}
