// Package events provides the in-process event bus used to push
// configuration activity to the websocket layer and other listeners.
package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventConfigLoaded    EventType = "CONFIG_LOADED"
	EventConfigHydrated  EventType = "CONFIG_HYDRATED"
	EventConfigExported  EventType = "CONFIG_EXPORTED"
	EventChangesPreviewed EventType = "CHANGES_PREVIEWED"
	EventChangesApplied  EventType = "CHANGES_APPLIED"
	EventSnapshotSaved   EventType = "SNAPSHOT_SAVED"
	EventSnapshotRestored EventType = "SNAPSHOT_RESTORED"
	EventValidationRun   EventType = "VALIDATION_RUN"
	EventError           EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers. Subscribers run in their own
// goroutines so a slow listener never blocks the publisher.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event)
		}
	}
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishData is a convenience wrapper building the event in place.
func (eb *EventBus) PublishData(eventType EventType, data map[string]interface{}) {
	eb.Publish(Event{Type: eventType, Timestamp: time.Now(), Data: data})
}
