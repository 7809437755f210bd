package advocate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// PairsTotal tracks advocate pair runs by outcome.
	PairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_advocate_pairs_total",
			Help: "Total number of advocate pair runs",
		},
		[]string{"status"},
	)

	// ValidationFailuresTotal tracks schema failures by mandated side.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_advocate_validation_failures_total",
			Help: "Total number of advocate outputs rejected by schema validation",
		},
		[]string{"side"},
	)

	// PairDurationSeconds tracks wall time of the concurrent pair.
	PairDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tribunal_advocate_pair_duration_seconds",
		Help:    "Duration of the concurrent advocate pair stage",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	})
)
