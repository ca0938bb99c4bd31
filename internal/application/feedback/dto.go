package feedback

import (
	"time"

	"github.com/felicity/backend/internal/domain/feedback"
	"github.com/google/uuid"
)

// SubmitFeedbackRequest rates an event once, with an optional comment
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// FeedbackResponse represents submitted feedback in API responses
type FeedbackResponse struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeedbackListResult is a paginated feedback listing with its aggregate
type FeedbackListResult struct {
	Feedback []FeedbackResponse `json:"feedback"`
	Summary  feedback.Summary   `json:"summary"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ToFeedbackResponse converts domain feedback to the API view
func ToFeedbackResponse(f *feedback.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:            f.ID,
		EventID:       f.EventID,
		ParticipantID: f.ParticipantID,
		Rating:        f.Rating,
		Comment:       f.Comment,
		CreatedAt:     f.CreatedAt,
	}
}
