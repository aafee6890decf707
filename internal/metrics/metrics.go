// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "yoga"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// AuthDecisions counts gate outcomes. stage is "verify" or "role",
	// outcome is "allowed", "unauthorized", "forbidden" or "error".
	AuthDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_auth_decisions_total",
			Help: "Authorization gate decisions",
		},
		[]string{"stage", "outcome"},
	)

	PaymentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_payment_intents_total",
			Help: "Payment intents requested from the gateway",
		},
		[]string{"result"},
	)
)
