package event

import (
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateEventRequest creates a new draft event
type CreateEventRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Description string   `json:"description"`
	Type        string   `json:"type" binding:"required,oneof=normal merchandise"`
	Eligibility string   `json:"eligibility" binding:"omitempty,oneof=all IIIT-only Non-IIIT-only"`
	Tags        []string `json:"tags"`
	Venue       string   `json:"venue"`

	RegistrationDeadline *time.Time `json:"registration_deadline"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`

	RegistrationLimit int             `json:"registration_limit" binding:"min=0"`
	RegistrationFee   decimal.Decimal `json:"registration_fee"`

	ItemName      string           `json:"item_name"`
	PurchaseLimit int              `json:"purchase_limit" binding:"min=0"`
	Variants      []VariantRequest `json:"variants"`
}

// UpdateEventRequest carries optional field updates; absent fields are left
// unchanged. Which fields may change depends on the event status.
type UpdateEventRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Eligibility       *string          `json:"eligibility"`
	Tags              []string         `json:"tags"`
	Venue             *string          `json:"venue"`
	Deadline          *time.Time       `json:"registration_deadline"`
	StartDate         *time.Time       `json:"start_date"`
	EndDate           *time.Time       `json:"end_date"`
	RegistrationLimit *int             `json:"registration_limit"`
	RegistrationFee   *decimal.Decimal `json:"registration_fee"`
	ItemName          *string          `json:"item_name"`
	PurchaseLimit     *int             `json:"purchase_limit"`
}

func (r UpdateEventRequest) toDomain() event.EventUpdate {
	update := event.EventUpdate{
		Name:              r.Name,
		Description:       r.Description,
		Tags:              r.Tags,
		Venue:             r.Venue,
		Deadline:          r.Deadline,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		RegistrationLimit: r.RegistrationLimit,
		RegistrationFee:   r.RegistrationFee,
		ItemName:          r.ItemName,
		PurchaseLimit:     r.PurchaseLimit,
	}
	if r.Eligibility != nil {
		e := event.Eligibility(*r.Eligibility)
		update.Eligibility = &e
	}
	return update
}

// ScheduleRequest sets the registration deadline and event window
type ScheduleRequest struct {
	RegistrationDeadline time.Time `json:"registration_deadline" binding:"required"`
	StartDate            time.Time `json:"start_date" binding:"required"`
	EndDate              time.Time `json:"end_date" binding:"required"`
}

// StatusRequest moves the event to a new lifecycle status
type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published ongoing completed closed"`
}

// VariantRequest creates or restocks a merchandise variant
type VariantRequest struct {
	Size  string `json:"size" binding:"required"`
	Color string `json:"color" binding:"required"`
	Stock int    `json:"stock" binding:"min=0"`
}

// SetFormRequest replaces the event's registration form definition
type SetFormRequest struct {
	Fields []event.FormField `json:"fields" binding:"required"`
}

// ListQuery filters and sorts the public event listing
type ListQuery struct {
	Keyword      string     `form:"search"`
	Type         string     `form:"type"`
	Eligibility  string     `form:"eligibility"`
	StartAfter   *time.Time `form:"start_after" time_format:"2006-01-02"`
	StartBefore  *time.Time `form:"start_before" time_format:"2006-01-02"`
	FollowedOnly bool       `form:"followed_only"`
	Sort         string     `form:"sort" binding:"omitempty,oneof=recent popular relevant"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// VariantResponse represents a merchandise variant in API responses
type VariantResponse struct {
	ID            uuid.UUID `json:"id"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	StockQuantity int       `json:"stock_quantity"`
	Sold          int       `json:"sold"`
}

// EventResponse is the full event view
type EventResponse struct {
	ID          uuid.UUID `json:"id"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Eligibility string    `json:"eligibility"`
	Tags        []string  `json:"tags"`
	Venue       string    `json:"venue,omitempty"`

	RegistrationDeadline time.Time `json:"registration_deadline"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`

	RegistrationLimit int             `json:"registration_limit"`
	RegistrationFee   decimal.Decimal `json:"registration_fee"`
	Status            string          `json:"status"`

	CustomForm event.CustomForm `json:"custom_form,omitempty"`
	FormLocked bool             `json:"form_locked"`

	ItemName      string            `json:"item_name,omitempty"`
	PurchaseLimit int               `json:"purchase_limit,omitempty"`
	Variants      []VariantResponse `json:"variants,omitempty"`

	TotalRegistrations int   `json:"total_registrations"`
	Views              int64 `json:"views"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventSummary is the compact event view used in listings
type EventSummary struct {
	ID                   uuid.UUID       `json:"id"`
	OrganizerID          uuid.UUID       `json:"organizer_id"`
	Name                 string          `json:"name"`
	Type                 string          `json:"type"`
	Eligibility          string          `json:"eligibility"`
	Tags                 []string        `json:"tags"`
	RegistrationDeadline time.Time       `json:"registration_deadline"`
	StartDate            time.Time       `json:"start_date"`
	RegistrationFee      decimal.Decimal `json:"registration_fee"`
	Status               string          `json:"status"`
	TotalRegistrations   int             `json:"total_registrations"`
	RegistrationLimit    int             `json:"registration_limit"`
	Views                int64           `json:"views"`
}

// EventListResult is a paginated listing
type EventListResult struct {
	Events   []EventSummary `json:"events"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// EventAnalytics summarizes one event's registration outcomes
type EventAnalytics struct {
	TotalRegistrations int             `json:"total_registrations"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalAttendance    int             `json:"total_attendance"`
	AttendanceRate     float64         `json:"attendance_rate"`
}

// DashboardAnalytics aggregates outcomes across an organizer's completed events
type DashboardAnalytics struct {
	TotalEvents        int             `json:"total_events"`
	TotalRegistrations int             `json:"total_registrations"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalAttendance    int             `json:"total_attendance"`
}

// DashboardResponse is the organizer dashboard view
type DashboardResponse struct {
	Events    []EventSummary     `json:"events"`
	Analytics DashboardAnalytics `json:"analytics"`
}

// OwnedEventResponse is the organizer's view of one of their events
type OwnedEventResponse struct {
	Event     EventResponse  `json:"event"`
	Analytics EventAnalytics `json:"analytics"`
}

// ToEventResponse converts a domain event to the full response view
func ToEventResponse(e *event.Event) *EventResponse {
	resp := &EventResponse{
		ID:                   e.ID,
		OrganizerID:          e.OrganizerID,
		Name:                 e.Name,
		Description:          e.Description,
		Type:                 string(e.Type),
		Eligibility:          string(e.Eligibility),
		Tags:                 e.Tags,
		Venue:                e.Venue,
		RegistrationDeadline: e.RegistrationDeadline,
		StartDate:            e.StartDate,
		EndDate:              e.EndDate,
		RegistrationLimit:    e.RegistrationLimit,
		RegistrationFee:      e.RegistrationFee,
		Status:               e.Status.String(),
		CustomForm:           e.CustomForm,
		FormLocked:           e.FormLocked,
		ItemName:             e.ItemName,
		PurchaseLimit:        e.PurchaseLimitPerAttendee,
		TotalRegistrations:   e.TotalRegistrations,
		Views:                e.Views,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
	for _, v := range e.Variants {
		resp.Variants = append(resp.Variants, VariantResponse{
			ID:            v.ID,
			Size:          v.Size,
			Color:         v.Color,
			StockQuantity: v.StockQuantity,
			Sold:          v.Sold,
		})
	}
	return resp
}

// ToEventSummary converts a domain event to the listing view
func ToEventSummary(e *event.Event) EventSummary {
	return EventSummary{
		ID:                   e.ID,
		OrganizerID:          e.OrganizerID,
		Name:                 e.Name,
		Type:                 string(e.Type),
		Eligibility:          string(e.Eligibility),
		Tags:                 e.Tags,
		RegistrationDeadline: e.RegistrationDeadline,
		StartDate:            e.StartDate,
		RegistrationFee:      e.RegistrationFee,
		Status:               e.Status.String(),
		TotalRegistrations:   e.TotalRegistrations,
		RegistrationLimit:    e.RegistrationLimit,
		Views:                e.Views,
	}
}

func toEventAnalytics(e *event.Event) EventAnalytics {
	a := EventAnalytics{
		TotalRegistrations: e.TotalRegistrations,
		TotalRevenue:       e.TotalRevenue,
		TotalAttendance:    e.TotalAttendance,
	}
	if e.TotalRegistrations > 0 {
		a.AttendanceRate = float64(e.TotalAttendance) / float64(e.TotalRegistrations) * 100
	}
	return a
}
