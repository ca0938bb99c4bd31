package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SortMode controls event listing order
type SortMode string

const (
	SortModeRecent  SortMode = "recent"
	SortModePopular SortMode = "popular"
)

// EventRepository defines the interface for event persistence
type EventRepository interface {
	// Create creates a new event with its variants
	Create(ctx context.Context, e *Event) error

	// Update updates an existing event
	Update(ctx context.Context, e *Event) error

	// Delete deletes an event by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds an event by ID, variants included
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// FindAll returns events matching the filter with pagination
	FindAll(ctx context.Context, filter EventFilter) ([]*Event, int64, error)

	// FindByOrganizer returns all events owned by an organizer
	FindByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*Event, error)

	// FindTrending returns the most viewed published events whose view
	// window started after the cutoff
	FindTrending(ctx context.Context, cutoff time.Time, limit int) ([]*Event, error)

	// SaveVariant inserts or updates a single variant
	SaveVariant(ctx context.Context, v *Variant) error

	// DeleteVariant removes a variant
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	// Count returns the number of events matching the filter
	Count(ctx context.Context, filter EventFilter) (int64, error)
}

// EventFilter contains filter options for querying events
type EventFilter struct {
	// Search keyword for name and description
	Keyword string

	// Filter by type
	Type *EventType

	// Filter by eligibility
	Eligibility *Eligibility

	// Filter by one or more statuses; empty means published only
	Statuses []EventStatus

	// Filter by organizer
	OrganizerID *uuid.UUID

	// Only events starting after this time
	StartAfter *time.Time

	// Only events starting before this time
	StartBefore *time.Time

	// Only events ending before this time
	EndBefore *time.Time

	// Filter by tag overlap
	Tags []string

	Sort SortMode

	// Pagination
	Page     int
	PageSize int
}

// NewEventFilter creates a filter with default values
func NewEventFilter() EventFilter {
	return EventFilter{
		Statuses: []EventStatus{EventStatusPublished},
		Sort:     SortModeRecent,
		Page:     1,
		PageSize: 20,
	}
}

// Offset returns the offset for pagination
func (f EventFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f EventFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
