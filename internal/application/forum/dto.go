package forum

import (
	"time"

	"github.com/felicity/backend/internal/domain/forum"
	"github.com/google/uuid"
)

// PostMessageRequest posts a message, reply or announcement to an event board
type PostMessageRequest struct {
	Content      string     `json:"content" binding:"required,max=2000"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Announcement bool       `json:"announcement"`
}

// ReactionRequest toggles a reaction on a message
type ReactionRequest struct {
	Type string `json:"type" binding:"required,oneof=like heart thumbsup thumbsdown question"`
}

// MessageResponse represents a forum message in API responses
type MessageResponse struct {
	ID           uuid.UUID                  `json:"id"`
	EventID      uuid.UUID                  `json:"event_id"`
	AuthorID     uuid.UUID                  `json:"author_id"`
	ParentID     *uuid.UUID                 `json:"parent_id,omitempty"`
	Content      string                     `json:"content"`
	Announcement bool                       `json:"announcement"`
	Pinned       bool                       `json:"pinned"`
	Reactions    map[forum.ReactionType]int `json:"reactions"`
	Deleted      bool                       `json:"deleted"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// MessageListResult is a paginated board view
type MessageListResult struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ToMessageResponse converts a domain message, blanking deleted content so
// threads keep their shape without leaking what was removed
func ToMessageResponse(m *forum.Message) MessageResponse {
	resp := MessageResponse{
		ID:           m.ID,
		EventID:      m.EventID,
		AuthorID:     m.AuthorID,
		ParentID:     m.ParentID,
		Content:      m.Content,
		Announcement: m.Announcement,
		Pinned:       m.Pinned,
		Reactions:    m.ReactionCounts(),
		Deleted:      m.Deleted,
		CreatedAt:    m.CreatedAt,
	}
	if m.Deleted {
		resp.Content = ""
		resp.Reactions = map[forum.ReactionType]int{}
	}
	return resp
}
