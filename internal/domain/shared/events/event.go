// Package events defines the domain event contract and the in-memory
// dispatcher that fans events out to registered handlers.
package events

import "time"

// DomainEvent is implemented by every event emitted from the domain layer.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetOccurredAt() time.Time
}

// BaseEvent provides the common fields for domain events.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e BaseEvent) GetAggregateID() string   { return e.AggregateID }
func (e BaseEvent) GetEventType() string     { return e.EventType }
func (e BaseEvent) GetOccurredAt() time.Time { return e.OccurredAt }

// EventHandler processes domain events of the types it declares.
type EventHandler interface {
	Handle(event DomainEvent) error
	CanHandle(eventType string) bool
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(event DomainEvent) error
	PublishAll(events []DomainEvent) error
}

// EventSubscriber registers handlers for event types.
type EventSubscriber interface {
	Subscribe(eventType string, handler EventHandler) error
}

// EventDispatcher combines publishing and subscription with lifecycle control.
type EventDispatcher interface {
	EventPublisher
	EventSubscriber
	Start() error
	Stop() error
}

// HandlerFunc adapts a function to the EventHandler interface for a single
// event type.
type HandlerFunc struct {
	eventType string
	fn        func(DomainEvent) error
}

func NewHandlerFunc(eventType string, fn func(DomainEvent) error) *HandlerFunc {
	return &HandlerFunc{eventType: eventType, fn: fn}
}

func (h *HandlerFunc) Handle(event DomainEvent) error {
	if h.fn == nil {
		return nil
	}
	return h.fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	return h.eventType == eventType
}
