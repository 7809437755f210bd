package judge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RulingsTotal tracks adjudication runs by outcome.
	RulingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_judge_rulings_total",
			Help: "Total number of adjudication runs",
		},
		[]string{"status"},
	)

	// InconsistentRulingsTotal tracks rulings whose declared verdict
	// contradicts their own higher aggregate score.
	InconsistentRulingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribunal_judge_inconsistent_rulings_total",
		Help: "Total number of rulings whose verdict disagrees with their scores",
	})

	// RulingDurationSeconds tracks adjudication latency.
	RulingDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tribunal_judge_ruling_duration_seconds",
		Help:    "Duration of the adjudication stage",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	})
)
