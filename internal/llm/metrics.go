package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// CallsTotal tracks reasoning-service calls by role and outcome.
	CallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_llm_calls_total",
			Help: "Total number of reasoning-service calls",
		},
		[]string{"role", "status"},
	)

	// CallDurationSeconds tracks per-role call latency.
	CallDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tribunal_llm_call_duration_seconds",
			Help:    "Duration of reasoning-service calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"role"},
	)
)
