package evidence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// SourceFailuresTotal tracks per-source fetch failures.
	SourceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_evidence_source_failures_total",
			Help: "Total number of failed evidence source fetches",
		},
		[]string{"source"},
	)

	// GatherDurationSeconds tracks full fan-out latency.
	GatherDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tribunal_evidence_gather_duration_seconds",
		Help:    "Duration of the evidence fan-out",
		Buckets: prometheus.DefBuckets,
	})

	// BundleSizeItems tracks how many items each trial's bundle carried.
	BundleSizeItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tribunal_evidence_bundle_size_items",
		Help:    "Number of evidence items per gathered bundle",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})
)
