// Package eventbus provides the synchronous EventBus used to connect services and the UI.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// SyncEventBus delivers events on the publisher's goroutine, in subscription order.
//
// The playback service publishes from its progress ticker and device callbacks,
// the emotion service from its sampling goroutine, so the bus is safe for concurrent use.
// A panicking handler is logged and does not stop delivery to the others.
type SyncEventBus struct {
	logger *slog.Logger

	subscribers    map[domain.EventType][]subscription
	allSubscribers []subscription

	mu     sync.RWMutex
	nextID uint64
	closed bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus. logger may be nil.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	return &SyncEventBus{
		logger:      logger,
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// Publish publishes an event to all subscribers of that event type, then to wildcard subscribers.
// Publishing on a closed bus does nothing.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	// Copy so handlers can (un)subscribe without deadlocking.
	targets := make([]subscription, 0, len(bus.subscribers[event.Type()])+len(bus.allSubscribers))
	targets = append(targets, bus.subscribers[event.Type()]...)
	targets = append(targets, bus.allSubscribers...)
	bus.mu.RUnlock()

	if bus.logger != nil {
		bus.logger.Debug("event published",
			slog.String("event_type", string(event.Type())),
			slog.Int("handlers", len(targets)))
	}

	for _, sub := range targets {
		bus.deliver(sub, event)
	}
}

func (bus *SyncEventBus) deliver(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && bus.logger != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("subscription", string(sub.id)),
				slog.String("event_type", string(event.Type())))
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add("sub", handler, func(sub subscription) {
		bus.subscribers[eventType] = append(bus.subscribers[eventType], sub)
	})
}

// SubscribeAll registers a handler that receives all events regardless of type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add("sub-all", handler, func(sub subscription) {
		bus.allSubscribers = append(bus.allSubscribers, sub)
	})
}

func (bus *SyncEventBus) add(prefix string, handler domain.EventHandler, insert func(subscription)) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	sub := subscription{
		id:      domain.SubscriptionID(fmt.Sprintf("%s-%d", prefix, bus.nextID)),
		handler: handler,
	}
	insert(sub)
	return sub.id
}

// Unsubscribe removes a previously registered event handler.
// Delivery order of the remaining handlers is preserved.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for eventType, subs := range bus.subscribers {
		if rest, ok := without(subs, id); ok {
			bus.subscribers[eventType] = rest
			return
		}
	}
	if rest, ok := without(bus.allSubscribers, id); ok {
		bus.allSubscribers = rest
	}
}

func without(subs []subscription, id domain.SubscriptionID) ([]subscription, bool) {
	for i, sub := range subs {
		if sub.id == id {
			out := make([]subscription, 0, len(subs)-1)
			out = append(out, subs[:i]...)
			return append(out, subs[i+1:]...), true
		}
	}
	return subs, false
}

// HasSubscribers returns true if there are any active subscriptions for the given event type.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.subscribers[eventType]) > 0 || len(bus.allSubscribers) > 0
}

// Close clears all subscriptions. Closing twice returns an error.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return fmt.Errorf("event bus already closed")
	}

	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.allSubscribers = nil

	return nil
}

// SubscriberCount returns the number of active subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.allSubscribers)
	for _, subs := range bus.subscribers {
		count += len(subs)
	}
	return count
}

var _ ports.EventBus = (*SyncEventBus)(nil)
