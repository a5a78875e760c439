// Package metrics holds the gateway's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_gateway_requests_total",
			Help: "Requests handled, by client class and HTTP status",
		},
		[]string{"class", "status"},
	)

	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_gateway_ratelimit_decisions_total",
			Help: "Rate limit outcomes",
		},
		[]string{"outcome"}, // allowed, denied
	)

	// RateLimitDegraded counts fail-open admissions while the counter store
	// is unreachable. A non-zero rate means enforcement is being bypassed.
	RateLimitDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nfc_gateway_ratelimit_degraded_total",
			Help: "Requests admitted fail-open because the rate limit store errored",
		},
	)

	ArtworkLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_gateway_artwork_lookups_total",
			Help: "Artwork store lookups, by outcome",
		},
		[]string{"outcome"}, // found, not_found, cache_hit, error
	)

	MachineTokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_gateway_machine_tokens_total",
			Help: "Machine token issuance attempts, by outcome",
		},
		[]string{"outcome"}, // issued, failed
	)
)
