package registration

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for registration persistence
type Repository interface {
	// Create inserts a new registration. A unique violation on the
	// active-registration index is returned as ErrAlreadyRegistered; a
	// ticket ID collision as ErrAlreadyExists so callers can retry with a
	// fresh ticket.
	Create(ctx context.Context, r *Registration) error

	// Update updates an existing registration
	Update(ctx context.Context, r *Registration) error

	// SaveWithLock persists the registration guarded by its version,
	// failing with ErrConcurrencyConflict if another writer got there first
	SaveWithLock(ctx context.Context, r *Registration) error

	// FindByID finds a registration by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Registration, error)

	// FindByTicketID finds a registration by its ticket identifier
	FindByTicketID(ctx context.Context, ticketID string) (*Registration, error)

	// FindActive returns the participant's active normal registration for
	// an event, or ErrNotFound
	FindActive(ctx context.Context, eventID, participantID uuid.UUID) (*Registration, error)

	// FindByEvent returns registrations for an event matching the filter
	FindByEvent(ctx context.Context, eventID uuid.UUID, filter Filter) ([]*Registration, int64, error)

	// FindByParticipant returns all registrations of a participant,
	// newest first
	FindByParticipant(ctx context.Context, participantID uuid.UUID) ([]*Registration, error)

	// CountActiveByEvent counts registrations holding a slot for the event
	CountActiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)

	// SumQuantityByParticipant totals merchandise units a participant has
	// ordered for an event across pending and approved orders, for
	// purchase limit enforcement
	SumQuantityByParticipant(ctx context.Context, eventID, participantID uuid.UUID) (int, error)

	// CountAttendedByEvent counts attended registrations for an event
	CountAttendedByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

// Filter contains filter options for querying an event's registrations
type Filter struct {
	// Filter by registration type
	Type *RegistrationType

	// Filter by registration status
	Status *Status

	// Filter by approval status (merchandise orders)
	ApprovalStatus *ApprovalStatus

	// Only attended (or only not attended) registrations
	Attended *bool

	// Pagination
	Page     int
	PageSize int
}

// NewFilter creates a filter with default values
func NewFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 50,
	}
}

// Offset returns the offset for pagination
func (f Filter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return 50
	}
	if f.PageSize > 500 {
		return 500
	}
	return f.PageSize
}
