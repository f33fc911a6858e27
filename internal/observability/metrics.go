// README: Prometheus metrics for orders, offers, oracle calls, and HTTP traffic.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "orders_created_total", Help: "Orders created, by category"},
		[]string{"category"},
	)
	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "order_transitions_total", Help: "Successful order status transitions, by target status"},
		[]string{"to"},
	)
	TransitionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "order_transition_conflicts_total", Help: "Conditional writes that lost to a concurrent transition"},
	)
	OffersSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "offers_submitted_total", Help: "Courier offers accepted into the store"},
	)
	OffersRejectedClosed = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "offers_rejected_closed_total", Help: "Offer submissions rejected because the order had left the offering window"},
	)

	OracleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "oracle_requests_total", Help: "Road-distance oracle lookups, by outcome"},
		[]string{"outcome"},
	)
	OracleLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{Namespace: "mashwar", Name: "oracle_latency_seconds", Help: "Road-distance oracle latency", Buckets: prometheus.DefBuckets},
	)

	NotifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "notify_failures_total", Help: "Operator notifications that failed to send"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mashwar", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mashwar",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
