package event

import (
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType distinguishes normal events from merchandise sales
type EventType string

const (
	EventTypeNormal      EventType = "normal"
	EventTypeMerchandise EventType = "merchandise"
)

// IsValid checks if the type is a valid EventType
func (t EventType) IsValid() bool {
	return t == EventTypeNormal || t == EventTypeMerchandise
}

// Eligibility restricts which participants may register
type Eligibility string

const (
	EligibilityAll         Eligibility = "all"
	EligibilityIIITOnly    Eligibility = "IIIT-only"
	EligibilityNonIIITOnly Eligibility = "Non-IIIT-only"
)

// IsValid checks if the eligibility value is known
func (e Eligibility) IsValid() bool {
	switch e {
	case EligibilityAll, EligibilityIIITOnly, EligibilityNonIIITOnly:
		return true
	}
	return false
}

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusClosed    EventStatus = "closed"
)

// IsValid checks if the status is a valid EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusOngoing, EventStatusCompleted, EventStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	switch s {
	case EventStatusDraft:
		return target == EventStatusPublished || target == EventStatusClosed
	case EventStatusPublished:
		return target == EventStatusOngoing || target == EventStatusClosed
	case EventStatusOngoing:
		return target == EventStatusCompleted || target == EventStatusClosed
	case EventStatusCompleted:
		return target == EventStatusClosed
	case EventStatusClosed:
		return false // Terminal state
	}
	return false
}

// Event is the aggregate root for an event or merchandise sale.
//
// The registration counters (TotalRegistrations, TotalRevenue,
// TotalAttendance) and variant stock are owned by the capacity ledger and
// must only be changed through conditional atomic updates; the aggregate
// never writes them from loaded state.
type Event struct {
	shared.BaseAggregateRoot
	OrganizerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	Type        EventType   `gorm:"not null;index"`
	Eligibility Eligibility `gorm:"not null;default:all"`
	Tags        []string    `gorm:"serializer:json"`
	Venue       string

	RegistrationDeadline time.Time
	StartDate            time.Time
	EndDate              time.Time

	// 0 means unlimited
	RegistrationLimit int
	RegistrationFee   decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	Status EventStatus `gorm:"not null;index;default:draft"`

	CustomForm CustomForm `gorm:"serializer:json"`
	FormLocked bool

	// Merchandise details, only meaningful when Type is merchandise
	ItemName                 string
	PurchaseLimitPerAttendee int
	Variants                 []Variant `gorm:"foreignKey:EventID"`

	TotalRegistrations int
	TotalRevenue       decimal.Decimal `gorm:"type:decimal(14,2);default:0"`
	TotalAttendance    int

	Views         int64
	LastViewReset time.Time
}

// NewEvent creates a new draft event
func NewEvent(organizerID uuid.UUID, name, description string, eventType EventType, eligibility Eligibility) (*Event, error) {
	if organizerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZER_ID", "Organizer ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Event name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Event name cannot exceed 200 characters")
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Event type must be normal or merchandise")
	}
	if eligibility == "" {
		eligibility = EligibilityAll
	}
	if !eligibility.IsValid() {
		return nil, shared.NewDomainError("INVALID_ELIGIBILITY", "Unknown eligibility rule")
	}

	e := &Event{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrganizerID:       organizerID,
		Name:              name,
		Description:       strings.TrimSpace(description),
		Type:              eventType,
		Eligibility:       eligibility,
		Tags:              make([]string, 0),
		Status:            EventStatusDraft,
		RegistrationFee:   decimal.Zero,
		TotalRevenue:      decimal.Zero,
		LastViewReset:     time.Now(),
	}

	return e, nil
}

// SetSchedule sets the registration deadline and the event window.
// Allowed while draft; once published only the deadline may move.
func (e *Event) SetSchedule(deadline, start, end time.Time) error {
	if e.Status != EventStatusDraft {
		return shared.ErrInvalidState
	}
	if err := validateSchedule(deadline, start, end); err != nil {
		return err
	}

	e.RegistrationDeadline = deadline
	e.StartDate = start
	e.EndDate = end
	e.touch()

	return nil
}

func validateSchedule(deadline, start, end time.Time) error {
	if deadline.IsZero() || start.IsZero() || end.IsZero() {
		return shared.NewDomainError("INVALID_SCHEDULE", "Deadline, start and end dates are required")
	}
	if end.Before(start) {
		return shared.NewDomainError("INVALID_SCHEDULE", "End date cannot be before start date")
	}
	if deadline.After(start) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Registration deadline cannot be after the event start")
	}
	return nil
}

/// UpdateDetails updates event fields subject to status gating: drafts are
// fully editable; published events may only change description, deadline
// and registration limit; later statuses are read-only.
func (e *Event) UpdateDetails(update EventUpdate) error {
	switch e.Status {
	case EventStatusDraft:
		return e.applyDraftUpdate(update)
	case EventStatusPublished:
		return e.applyPublishedUpdate(update)
	default:
		return shared.ErrInvalidState
	}
}

// EventUpdate carries optional field updates; nil fields are left unchanged
type EventUpdate struct {
	Name              *string
	Description       *string
	Eligibility       *Eligibility
	Tags              []string
	Venue             *string
	Deadline          *time.Time
	StartDate         *time.Time
	EndDate           *time.Time
	RegistrationLimit *int
	RegistrationFee   *decimal.Decimal
	ItemName          *string
	PurchaseLimit     *int
}

func (e *Event) applyDraftUpdate(update EventUpdate) error {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Event name cannot be empty")
		}
		e.Name = name
	}
	if update.Description != nil {
		e.Description = strings.TrimSpace(*update.Description)
	}
	if update.Eligibility != nil {
		if !update.Eligibility.IsValid() {
			return shared.NewDomainError("INVALID_ELIGIBILITY", "Unknown eligibility rule")
		}
		e.Eligibility = *update.Eligibility
	}
	if update.Tags != nil {
		e.Tags = normalizeTags(update.Tags)
	}
	if update.Venue != nil {
		e.Venue = strings.TrimSpace(*update.Venue)
	}
	if update.Deadline != nil || update.StartDate != nil || update.EndDate != nil {
		deadline, start, end := e.RegistrationDeadline, e.StartDate, e.EndDate
		if update.Deadline != nil {
			deadline = *update.Deadline
		}
		if update.StartDate != nil {
			start = *update.StartDate
		}
		if update.EndDate != nil {
			end = *update.EndDate
		}
		if err := validateSchedule(deadline, start, end); err != nil {
			return err
		}
		e.RegistrationDeadline, e.StartDate, e.EndDate = deadline, start, end
	}
	if update.RegistrationLimit != nil {
		if *update.RegistrationLimit < 0 {
			return shared.NewDomainError("INVALID_LIMIT", "Registration limit cannot be negative")
		}
		e.RegistrationLimit = *update.RegistrationLimit
	}
	if update.RegistrationFee != nil {
		if update.RegistrationFee.IsNegative() {
			return shared.NewDomainError("INVALID_FEE", "Registration fee cannot be negative")
		}
		e.RegistrationFee = *update.RegistrationFee
	}
	if update.ItemName != nil {
		e.ItemName = strings.TrimSpace(*update.ItemName)
	}
	if update.PurchaseLimit != nil {
		if *update.PurchaseLimit < 0 {
			return shared.NewDomainError("INVALID_LIMIT", "Purchase limit cannot be negative")
		}
		e.PurchaseLimitPerAttendee = *update.PurchaseLimit
	}

	e.touch()
	return nil
}

func (e *Event) applyPublishedUpdate(update EventUpdate) error {
	if update.Name != nil || update.Eligibility != nil || update.Tags != nil ||
		update.StartDate != nil || update.EndDate != nil || update.RegistrationFee != nil ||
		update.ItemName != nil || update.PurchaseLimit != nil || update.Venue != nil {
		return shared.NewDomainError("FIELD_NOT_EDITABLE", "Only description, deadline and registration limit can change after publishing")
	}

	if update.Description != nil {
		e.Description = strings.TrimSpace(*update.Description)
	}
	if update.Deadline != nil {
		if err := validateSchedule(*update.Deadline, e.StartDate, e.EndDate); err != nil {
			return err
		}
		e.RegistrationDeadline = *update.Deadline
	}
	if update.RegistrationLimit != nil {
		if *update.RegistrationLimit < 0 {
			return shared.NewDomainError("INVALID_LIMIT", "Registration limit cannot be negative")
		}
		if *update.RegistrationLimit != 0 && *update.RegistrationLimit < e.TotalRegistrations {
			return shared.NewDomainError("INVALID_LIMIT", "Registration limit cannot be below the current registration count")
		}
		e.RegistrationLimit = *update.RegistrationLimit
	}

	e.touch()
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// Publish moves a draft event to published
func (e *Event) Publish() error {
	if !e.Status.CanTransitionTo(EventStatusPublished) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Event cannot be published from status "+e.Status.String())
	}
	if e.RegistrationDeadline.IsZero() || e.StartDate.IsZero() || e.EndDate.IsZero() {
		return shared.NewDomainError("INVALID_SCHEDULE", "Schedule must be set before publishing")
	}
	if e.Type == EventTypeMerchandise && e.ItemName == "" {
		return shared.NewDomainError("INVALID_MERCHANDISE", "Merchandise events need an item name before publishing")
	}

	e.Status = EventStatusPublished
	e.touch()
	e.AddDomainEvent(NewEventPublishedEvent(e))

	return nil
}

// TransitionTo moves the event to the target status if the transition is legal
func (e *Event) TransitionTo(target EventStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown event status")
	}
	if target == EventStatusPublished {
		return e.Publish()
	}
	if !e.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Cannot transition from "+e.Status.String()+" to "+target.String())
	}

	old := e.Status
	e.Status = target
	e.touch()
	e.AddDomainEvent(NewEventStatusChangedEvent(e, old, target))

	return nil
}

// IsRegistrationOpen reports whether new registrations are accepted at the
// given time: the event is published and the deadline has not passed.
func (e *Event) IsRegistrationOpen(now time.Time) bool {
	return e.Status == EventStatusPublished && now.Before(e.RegistrationDeadline)
}

// DeadlinePassed reports whether the registration deadline has passed
func (e *Event) DeadlinePassed(now time.Time) bool {
	return !now.Before(e.RegistrationDeadline)
}

// HasStarted reports whether the event start date has passed
func (e *Event) HasStarted(now time.Time) bool {
	return !now.Before(e.StartDate)
}

// IsFull reports whether the registration limit has been reached.
// Admission decisions are made by the ledger's conditional update; this is
// only a pre-check for early rejection.
func (e *Event) IsFull() bool {
	return e.RegistrationLimit > 0 && e.TotalRegistrations >= e.RegistrationLimit
}

// FindVariant returns the variant matching size and color by value
func (e *Event) FindVariant(size, color string) *Variant {
	for i := range e.Variants {
		if e.Variants[i].Matches(size, color) {
			return &e.Variants[i]
		}
	}
	return nil
}

// SetCustomForm replaces the registration form definition, honoring the
// form lock: once locked, the set of fields is frozen and only cosmetic
// changes (label text, ordering) are allowed.
func (e *Event) SetCustomForm(form CustomForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if e.FormLocked && !e.CustomForm.SameFieldSet(form) {
		return shared.ErrFormLocked
	}

	e.CustomForm = form
	e.touch()

	return nil
}

// LockForm freezes the registration form field set. Called on the first
// accepted registration; locking twice is a no-op.
func (e *Event) LockForm() {
	if e.FormLocked {
		return
	}
	e.FormLocked = true
	e.touch()
}

func (e *Event) touch() {
	e.Touch()
	e.IncrementVersion()
}
