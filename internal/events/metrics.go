package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics are package-level by convention.
var (
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribunal_events_published_total",
		Help: "Total number of events published to the bus, by event type",
	}, []string{"type"})

	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribunal_events_dropped_total",
		Help: "Total number of events dropped because a subscriber buffer was full",
	})

	SubscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribunal_events_subscribers",
		Help: "Current number of event bus subscribers",
	})
)
