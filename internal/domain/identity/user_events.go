package identity

import (
	"time"

	"github.com/felicity/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
	EventTypeOrganizerApproved   = "OrganizerApproved"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Role:            user.Role,
	}
}

// UserPasswordChangedEvent is published when a user's password is changed
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Email     string    `json:"email"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewUserPasswordChangedEvent creates a new UserPasswordChangedEvent
func NewUserPasswordChangedEvent(user *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, AggregateTypeUser, user.ID),
		Email:           user.Email,
		ChangedAt:       time.Now(),
	}
}

// OrganizerApprovedEvent is published when an organizer account is approved
type OrganizerApprovedEvent struct {
	shared.BaseDomainEvent
	OrganizerName string `json:"organizer_name"`
}

// NewOrganizerApprovedEvent creates a new OrganizerApprovedEvent
func NewOrganizerApprovedEvent(user *User) *OrganizerApprovedEvent {
	return &OrganizerApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizerApproved, AggregateTypeUser, user.ID),
		OrganizerName:   user.OrganizerName,
	}
}
