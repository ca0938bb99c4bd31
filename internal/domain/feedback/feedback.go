package feedback

import (
	"context"
	"strings"

	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Feedback is a participant's one-time rating of an event. It is immutable
// once submitted; the database enforces uniqueness per (event, participant).
type Feedback struct {
	shared.BaseAggregateRoot
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_once"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_once"`
	Rating        int       `gorm:"not null"`
	Comment       string    `gorm:"type:text"`
}

// New creates feedback with a rating between 1 and 5
func New(eventID, participantID uuid.UUID, rating int, comment string) (*Feedback, error) {
	if eventID == uuid.Nil || participantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Event and participant IDs are required")
	}
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > 2000 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}

	return &Feedback{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EventID:           eventID,
		ParticipantID:     participantID,
		Rating:            rating,
		Comment:           comment,
	}, nil
}

// Summary aggregates an event's feedback
type Summary struct {
	Count        int64         `json:"count"`
	AverageScore float64       `json:"average_score"`
	Distribution map[int]int64 `json:"distribution"`
}

// Repository defines feedback persistence
type Repository interface {
	// Create inserts feedback; a duplicate (event, participant) pair is
	// returned as ErrAlreadyExists
	Create(ctx context.Context, f *Feedback) error

	// FindByEvent returns an event's feedback, newest first
	FindByEvent(ctx context.Context, eventID uuid.UUID, page, pageSize int) ([]*Feedback, int64, error)

	// FindByEventAndParticipant returns the participant's feedback for an
	// event, or ErrNotFound
	FindByEventAndParticipant(ctx context.Context, eventID, participantID uuid.UUID) (*Feedback, error)

	// Summarize computes the rating aggregate for an event
	Summarize(ctx context.Context, eventID uuid.UUID) (*Summary, error)
}
