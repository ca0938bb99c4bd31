package registration

import (
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Registration
const AggregateTypeRegistration = "Registration"

// Registration domain event types
const (
	EventTypeRegistrationCreated   = "RegistrationCreated"
	EventTypeRegistrationCancelled = "RegistrationCancelled"
	EventTypeOrderApproved         = "OrderApproved"
	EventTypeOrderRejected         = "OrderRejected"
	EventTypeAttendanceMarked      = "AttendanceMarked"
)

// RegistrationCreatedEvent is published when a registration or order is created
type RegistrationCreatedEvent struct {
	shared.BaseDomainEvent
	TicketID      string           `json:"ticket_id"`
	EventRef      uuid.UUID        `json:"event_id"`
	ParticipantID uuid.UUID        `json:"participant_id"`
	Kind          RegistrationType `json:"kind"`
}

// NewRegistrationCreatedEvent creates a new RegistrationCreatedEvent
func NewRegistrationCreatedEvent(r *Registration) *RegistrationCreatedEvent {
	return &RegistrationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationCreated, AggregateTypeRegistration, r.ID),
		TicketID:        r.TicketID,
		EventRef:        r.EventID,
		ParticipantID:   r.ParticipantID,
		Kind:            r.Type,
	}
}

// RegistrationCancelledEvent is published when a registration is cancelled
type RegistrationCancelledEvent struct {
	shared.BaseDomainEvent
	TicketID string    `json:"ticket_id"`
	EventRef uuid.UUID `json:"event_id"`
}

// NewRegistrationCancelledEvent creates a new RegistrationCancelledEvent
func NewRegistrationCancelledEvent(r *Registration) *RegistrationCancelledEvent {
	return &RegistrationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationCancelled, AggregateTypeRegistration, r.ID),
		TicketID:        r.TicketID,
		EventRef:        r.EventID,
	}
}

// OrderApprovedEvent is published when a merchandise order is approved
type OrderApprovedEvent struct {
	shared.BaseDomainEvent
	TicketID string `json:"ticket_id"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// NewOrderApprovedEvent creates a new OrderApprovedEvent
func NewOrderApprovedEvent(r *Registration) *OrderApprovedEvent {
	return &OrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderApproved, AggregateTypeRegistration, r.ID),
		TicketID:        r.TicketID,
		Size:            r.VariantSize,
		Color:           r.VariantColor,
		Quantity:        r.Quantity,
	}
}

// OrderRejectedEvent is published when a merchandise order is rejected
type OrderRejectedEvent struct {
	shared.BaseDomainEvent
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// NewOrderRejectedEvent creates a new OrderRejectedEvent
func NewOrderRejectedEvent(r *Registration) *OrderRejectedEvent {
	return &OrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRejected, AggregateTypeRegistration, r.ID),
		TicketID:        r.TicketID,
		Reason:          r.RejectionReason,
	}
}

// AttendanceMarkedEvent is published when attendance is recorded
type AttendanceMarkedEvent struct {
	shared.BaseDomainEvent
	TicketID string           `json:"ticket_id"`
	Method   AttendanceMethod `json:"method"`
}

// NewAttendanceMarkedEvent creates a new AttendanceMarkedEvent
func NewAttendanceMarkedEvent(r *Registration, method AttendanceMethod) *AttendanceMarkedEvent {
	return &AttendanceMarkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAttendanceMarked, AggregateTypeRegistration, r.ID),
		TicketID:        r.TicketID,
		Method:          method,
	}
}
