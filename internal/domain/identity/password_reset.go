package identity

import (
	"context"
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PasswordResetStatus represents the status of a password reset request
type PasswordResetStatus string

const (
	PasswordResetStatusPending  PasswordResetStatus = "pending"
	PasswordResetStatusApproved PasswordResetStatus = "approved"
	PasswordResetStatusRejected PasswordResetStatus = "rejected"
)

// PasswordResetRequest is an organizer's request for an admin-assisted
// password reset. At most one pending request may exist per organizer.
type PasswordResetRequest struct {
	shared.BaseAggregateRoot
	OrganizerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason       string
	Status       PasswordResetStatus `gorm:"not null;index"`
	AdminComment string
	ProcessedBy  *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt  *time.Time
}

// NewPasswordResetRequest creates a pending reset request for an organizer
func NewPasswordResetRequest(organizerID uuid.UUID, reason string) (*PasswordResetRequest, error) {
	if organizerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZER_ID", "Organizer ID cannot be empty")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "A reason is required for a password reset request")
	}

	return &PasswordResetRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrganizerID:       organizerID,
		Reason:            reason,
		Status:            PasswordResetStatusPending,
	}, nil
}

// Approve marks the request approved. The caller resets the organizer's
// password separately and communicates the new credentials.
func (r *PasswordResetRequest) Approve(adminID uuid.UUID, comment string) error {
	if r.Status != PasswordResetStatusPending {
		return shared.ErrAlreadyProcessed
	}

	now := time.Now()
	r.Status = PasswordResetStatusApproved
	r.AdminComment = strings.TrimSpace(comment)
	r.ProcessedBy = &adminID
	r.ProcessedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// Reject marks the request rejected with an admin comment
func (r *PasswordResetRequest) Reject(adminID uuid.UUID, comment string) error {
	if r.Status != PasswordResetStatusPending {
		return shared.ErrAlreadyProcessed
	}

	now := time.Now()
	r.Status = PasswordResetStatusRejected
	r.AdminComment = strings.TrimSpace(comment)
	r.ProcessedBy = &adminID
	r.ProcessedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// IsPending returns true if the request has not been processed
func (r *PasswordResetRequest) IsPending() bool {
	return r.Status == PasswordResetStatusPending
}

// PasswordResetRequestRepository defines persistence for reset requests
type PasswordResetRequestRepository interface {
	// Create creates a new reset request
	Create(ctx context.Context, request *PasswordResetRequest) error

	// Update updates an existing reset request
	Update(ctx context.Context, request *PasswordResetRequest) error

	// FindByID finds a reset request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PasswordResetRequest, error)

	// FindPendingByOrganizer returns the pending request for an organizer, if any
	FindPendingByOrganizer(ctx context.Context, organizerID uuid.UUID) (*PasswordResetRequest, error)

	// FindByStatus returns all requests with the given status, newest first
	FindByStatus(ctx context.Context, status PasswordResetStatus) ([]*PasswordResetRequest, error)
}
