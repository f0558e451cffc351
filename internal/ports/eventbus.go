// Package ports define the interfaces services and adapters meet at.
package ports

import (
	"github.com/tejashwikalptaru/aura/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// Services publish state changes (queue moves, device transitions, sampling results)
// and the presenter subscribes to render them. Publishers never know their subscribers.
//
// Thread-safety: Implementations must be thread-safe. The playback and sampling
// services publish from their own goroutines.
//
// Example usage:
//
//	bus.Publish(domain.NewTrackStartedEvent(track))
//
//	subID := bus.Subscribe(domain.EventTrackStarted, func(event domain.Event) {
//	    e := event.(domain.TrackStartedEvent)
//	    view.SetPlayState(true)
//	})
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish delivers an event to all subscribers of its type.
	// Handlers must return quickly; long work belongs on another goroutine.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type and
	// returns an ID for Unsubscribe. Registering the same handler twice
	// results in two deliveries.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered handler.
	// Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives every event.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether anyone listens for the event type.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions. Publishing after Close is a no-op.
	Close() error
}
