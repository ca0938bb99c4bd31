package event

import (
	"github.com/felicity/backend/internal/domain/shared"
)

// Aggregate type constant for Event
const AggregateTypeEvent = "Event"

// Event domain event types
const (
	EventTypeEventPublished     = "EventPublished"
	EventTypeEventStatusChanged = "EventStatusChanged"
)

// EventPublishedEvent is published when an event goes live
type EventPublishedEvent struct {
	shared.BaseDomainEvent
	Name      string    `json:"name"`
	EventKind EventType `json:"event_kind"`
}

// NewEventPublishedEvent creates a new EventPublishedEvent
func NewEventPublishedEvent(e *Event) *EventPublishedEvent {
	return &EventPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEventPublished, AggregateTypeEvent, e.ID),
		Name:            e.Name,
		EventKind:       e.Type,
	}
}

// EventStatusChangedEvent is published on any lifecycle transition
type EventStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus EventStatus `json:"old_status"`
	NewStatus EventStatus `json:"new_status"`
}

// NewEventStatusChangedEvent creates a new EventStatusChangedEvent
func NewEventStatusChangedEvent(e *Event, oldStatus, newStatus EventStatus) *EventStatusChangedEvent {
	return &EventStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEventStatusChanged, AggregateTypeEvent, e.ID),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
