package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics are package-level by convention.
var (
	BreakerAllowing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribunal_circuit_breaker_allowing",
		Help: "Whether the breaker currently admits trials (1) or rejects them (0)",
	})

	BreakerConsecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribunal_circuit_breaker_consecutive_failures",
		Help: "Current run of consecutive trial failures while closed",
	})

	BreakerStateChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribunal_circuit_breaker_state_changes_total",
		Help: "Total number of breaker state transitions",
	})

	BreakerRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribunal_circuit_breaker_rejections_total",
		Help: "Total number of trial runs rejected by the open breaker",
	})
)
