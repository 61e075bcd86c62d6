// Package metrics declares the Prometheus collectors of the dispatch core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_fees_applied_total",
			Help: "Ledger movements applied by the settlement engine, by entry type",
		},
		[]string{"type"},
	)

	FeeAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_fee_amount_total",
			Help: "Sum of applied settlement amounts in minor currency units, by entry type",
		},
		[]string{"type"},
	)

	GuardReverts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_guard_reverts_total",
			Help: "Order writes reverted by a guard",
		},
		[]string{"guard"},
	)

	ForcedCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_forced_cancellations_total",
			Help: "Orders cancelled after exhausting the fee revert budget",
		},
	)

	ExclusivityViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_exclusivity_violations_total",
			Help: "Unauthorized driver reassignments detected on locked orders",
		},
	)

	OrdersExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_orders_expired_total",
			Help: "Orders expired by the stale order sweep",
		},
	)

	LedgerDiscrepancies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_ledger_invalid_wallets",
			Help: "Wallets whose stored balance disagrees with their ledger on the last audit",
		},
	)

	HandlerOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_change_handler_outcomes_total",
			Help: "Order change handler invocations, by handler and result",
		},
		[]string{"handler", "result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_http_requests_total",
			Help: "HTTP requests, by method, route and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)
)

// Handler outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeSkipped   = "skipped"
	OutcomeRetryable = "retryable"
	OutcomeTerminal  = "terminal"
)
