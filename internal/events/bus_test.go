package events

import (
	"testing"
	"time"

	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(4, zap.NewNop())
	defer bus.Close()

	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(ledger.Event{ID: "e-1", Type: ledger.EventMarketCreated, MarketID: "m-1"})

	for i, ch := range []<-chan ledger.Event{ch1, ch2} {
		select {
		case event := <-ch:
			if event.ID != "e-1" {
				t.Errorf("subscriber %d got event %q, want e-1", i, event.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive the event", i)
		}
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus(1, zap.NewNop())
	defer bus.Close()

	slow, cancelSlow := bus.Subscribe()
	defer cancelSlow()

	// Fill the buffer, then publish past it. The second publish must not
	// block even though nobody drains the channel.
	bus.Publish(ledger.Event{ID: "e-1", Type: ledger.EventMarketCreated})

	done := make(chan struct{})
	go func() {
		bus.Publish(ledger.Event{ID: "e-2", Type: ledger.EventPositionTaken})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish() blocked on a full subscriber")
	}

	event := <-slow
	if event.ID != "e-1" {
		t.Errorf("buffered event = %q, want e-1", event.ID)
	}
}

func TestBusCountsPublishesNotDeliveries(t *testing.T) {
	bus := NewBus(4, zap.NewNop())
	defer bus.Close()

	_, cancel1 := bus.Subscribe()
	defer cancel1()
	_, cancel2 := bus.Subscribe()
	defer cancel2()

	counter := EventsPublishedTotal.WithLabelValues(string(ledger.EventSettlementRequested))
	before := testutil.ToFloat64(counter)

	bus.Publish(ledger.Event{ID: "e-1", Type: ledger.EventSettlementRequested, MarketID: "m-1"})

	// One publish fanned out to two subscribers is still one published event.
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("published counter delta = %v, want 1", got)
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(4, zap.NewNop())
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()

	if _, open := <-ch; open {
		t.Error("channel should be closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(ledger.Event{ID: "e-1", Type: ledger.EventMarketCreated})
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := NewBus(4, zap.NewNop())

	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Close()

	if _, open := <-ch; open {
		t.Error("channel should be closed after bus close")
	}

	// Subscribing after close yields an already-closed channel.
	late, lateCancel := bus.Subscribe()
	defer lateCancel()
	if _, open := <-late; open {
		t.Error("post-close subscription should be closed")
	}
}
