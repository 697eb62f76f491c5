// Package dispatch implements the fan-out point between the reader loop and
// every data consumer (store, websocket clients, archive).
//
// Delivery is synchronous: Dispatch runs each callback on the caller's
// goroutine, in registration order. The subscriber registry is guarded by a
// mutex that is never held across a callback invocation, so subscribers may
// subscribe or unsubscribe from inside their own callback.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/dweggg/libreScope/internal/models"
)

// Callback receives one parsed signal event.
type Callback func(event models.SignalEvent)

type subscriber struct {
	id       string
	callback Callback
}

// Hub maintains the registered subscriber set.
type Hub struct {
	mu          sync.Mutex
	subscribers []subscriber
	dispatched  uint64
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a callback under an identifier. Subscribing an
// already-registered identifier has no additional effect; the original
// callback and its registration position are retained.
func (h *Hub) Subscribe(id string, callback Callback) {
	if callback == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subscribers {
		if sub.id == id {
			return
		}
	}
	h.subscribers = append(h.subscribers, subscriber{id: id, callback: callback})
}

// Unsubscribe removes the callback registered under id. Unsubscribing an
// unknown identifier is a no-op.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, sub := range h.subscribers {
		if sub.id == id {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Dispatch delivers the event to every currently registered subscriber in
// registration order. A panicking subscriber is logged and isolated; the
// remaining subscribers still receive the event.
func (h *Hub) Dispatch(event models.SignalEvent) {
	h.mu.Lock()
	subs := make([]subscriber, len(h.subscribers))
	copy(subs, h.subscribers)
	h.dispatched++
	h.mu.Unlock()

	for _, sub := range subs {
		h.deliver(sub, event)
	}
}

func (h *Hub) deliver(sub subscriber, event models.SignalEvent) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Dispatch] Subscriber %s panicked: %v\n", sub.id, r)
		}
	}()
	sub.callback(event)
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Dispatched returns the total number of events fanned out.
func (h *Hub) Dispatched() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dispatched
}
