// Package events fans ledger events out to in-process subscribers: the
// persisted event log, the websocket feed, and anything else that watches
// market history.
package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/openverdict/tribunal/internal/ledger"
	"go.uber.org/zap"
)

// Bus is a non-blocking fan-out of ledger events. Publish never waits on a
// subscriber; a subscriber that falls behind loses events rather than
// stalling the ledger path.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan ledger.Event
	buffer      int
	closed      bool
	logger      *zap.Logger
}

// NewBus creates a bus whose subscriber channels hold buffer events.
func NewBus(buffer int, logger *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subscribers: make(map[string]chan ledger.Event),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The channel is closed on unsubscribe or bus close.
func (b *Bus) Subscribe() (<-chan ledger.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan ledger.Event)
		close(ch)
		return ch, func() {}
	}

	id := uuid.NewString()
	ch := make(chan ledger.Event, b.buffer)
	b.subscribers[id] = ch

	SubscribersGauge.Inc()

	return ch, func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(ch)

	SubscribersGauge.Dec()
}

// Publish delivers the event to every subscriber that has buffer room.
func (b *Bus) Publish(event ledger.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			EventsDroppedTotal.Inc()
			b.logger.Warn("event-dropped",
				zap.String("subscriber", id),
				zap.String("event-type", string(event.Type)),
				zap.String("market-id", event.MarketID))
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
		SubscribersGauge.Dec()
	}
}
