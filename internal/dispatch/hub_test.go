package dispatch

import (
	"sync"
	"testing"

	"github.com/dweggg/libreScope/internal/models"
)

func event(key string, value float64) models.SignalEvent {
	return models.SignalEvent{Key: key, Value: value, Timestamp: 1.0}
}

func TestDispatchOrder(t *testing.T) {
	h := NewHub()
	var order []string

	h.Subscribe("first", func(models.SignalEvent) { order = append(order, "first") })
	h.Subscribe("second", func(models.SignalEvent) { order = append(order, "second") })
	h.Subscribe("third", func(models.SignalEvent) { order = append(order, "third") })

	h.Dispatch(event("X", 1.0))

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("Expected registration-order delivery, got %v", order)
	}
}

func TestSubscribeIdempotent(t *testing.T) {
	h := NewHub()
	calls := 0

	h.Subscribe("dup", func(models.SignalEvent) { calls++ })
	h.Subscribe("dup", func(models.SignalEvent) { calls += 100 })

	if h.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber after duplicate subscribe, got %d", h.SubscriberCount())
	}

	h.Dispatch(event("X", 1.0))
	if calls != 1 {
		t.Errorf("Expected original callback retained, got calls=%d", calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub()
	calls := 0

	h.Subscribe("a", func(models.SignalEvent) { calls++ })
	h.Unsubscribe("a")
	h.Unsubscribe("never-registered") // no-op

	h.Dispatch(event("X", 1.0))
	if calls != 0 {
		t.Errorf("Expected no delivery after unsubscribe, got %d", calls)
	}
}

func TestPanicIsolation(t *testing.T) {
	h := NewHub()
	delivered := false

	h.Subscribe("bad", func(models.SignalEvent) { panic("subscriber failure") })
	h.Subscribe("good", func(models.SignalEvent) { delivered = true })

	h.Dispatch(event("X", 1.0))

	if !delivered {
		t.Error("Expected later subscriber to receive event despite earlier panic")
	}
}

func TestUnsubscribeDuringOwnInvocation(t *testing.T) {
	h := NewHub()
	calls := 0

	h.Subscribe("self-removing", func(models.SignalEvent) {
		calls++
		h.Unsubscribe("self-removing")
	})

	h.Dispatch(event("X", 1.0))
	h.Dispatch(event("X", 2.0))

	if calls != 1 {
		t.Errorf("Expected exactly one delivery to self-removing subscriber, got %d", calls)
	}
}

func TestConcurrentSubscribeAndDispatch(t *testing.T) {
	h := NewHub()
	var mu sync.Mutex
	received := 0
	h.Subscribe("counter", func(models.SignalEvent) {
		mu.Lock()
		received++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			h.Dispatch(event("X", float64(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			h.Subscribe("churn", func(models.SignalEvent) {})
			h.Unsubscribe("churn")
		}
	}()
	wg.Wait()

	if received != 500 {
		t.Errorf("Expected stable subscriber to see all 500 events, got %d", received)
	}
}
