package trial

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics are package-level by convention.
var (
	TrialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribunal_trials_total",
		Help: "Total number of trials by outcome (resolved, escalated, error, invalid)",
	}, []string{"outcome"})

	TrialDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tribunal_trial_duration_seconds",
		Help:    "Wall-clock duration of complete trials",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
