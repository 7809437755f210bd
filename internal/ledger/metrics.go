package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics are package-level by convention.
var (
	MarketsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribunal_ledger_markets_created_total",
		Help: "Total number of markets created",
	})

	PositionsTakenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribunal_ledger_positions_taken_total",
		Help: "Total number of stakes accepted, by side",
	}, []string{"side"})

	MarketsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribunal_ledger_markets_settled_total",
		Help: "Total number of markets resolved with a verdict, by outcome",
	}, []string{"outcome"})

	MarketsEscalatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribunal_ledger_markets_escalated_total",
		Help: "Total number of markets escalated to refunds",
	})

	ClaimsPaidTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribunal_ledger_claims_paid_total",
		Help: "Total number of successful claims, by claim type",
	}, []string{"type"})

	ClaimsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribunal_ledger_claims_failed_total",
		Help: "Total number of claims whose treasury transfer failed, by claim type",
	}, []string{"type"})

	EventsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribunal_ledger_events_emitted_total",
		Help: "Total number of ledger events emitted, by event type",
	}, []string{"type"})
)
