package forum

import (
	"context"
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxContentLength bounds a single forum message
const MaxContentLength = 2000

// ReactionType enumerates the supported message reactions
type ReactionType string

const (
	ReactionLike       ReactionType = "like"
	ReactionHeart      ReactionType = "heart"
	ReactionThumbsUp   ReactionType = "thumbsup"
	ReactionThumbsDown ReactionType = "thumbsdown"
	ReactionQuestion   ReactionType = "question"
)

// IsValid checks if the reaction type is supported
func (r ReactionType) IsValid() bool {
	switch r {
	case ReactionLike, ReactionHeart, ReactionThumbsUp, ReactionThumbsDown, ReactionQuestion:
		return true
	}
	return false
}

// Reaction is one user's reaction to a message. A user has at most one.
type Reaction struct {
	UserID uuid.UUID    `json:"userId"`
	Type   ReactionType `json:"type"`
}

// Message is a forum post in an event's discussion board. Replies reference
// their parent message; announcements are organizer-only posts pinned to
// the top of the board. Deletion is soft so threads keep their shape.
type Message struct {
	shared.BaseAggregateRoot
	EventID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	AuthorID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentID     *uuid.UUID `gorm:"type:uuid;index"`
	Content      string     `gorm:"type:text;not null"`
	Announcement bool
	Pinned       bool
	Reactions    []Reaction `gorm:"serializer:json"`
	Deleted      bool       `gorm:"not null;default:false;index"`
	DeletedBy    *uuid.UUID `gorm:"type:uuid"`
	DeletedAt    *time.Time
}

// NewMessage creates a forum message or reply
func NewMessage(eventID, authorID uuid.UUID, content string, parentID *uuid.UUID, announcement bool) (*Message, error) {
	if eventID == uuid.Nil || authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Event and author IDs are required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message content cannot be empty")
	}
	if len(content) > MaxContentLength {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message content cannot exceed 2000 characters")
	}
	if announcement && parentID != nil {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Announcements cannot be replies")
	}

	return &Message{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EventID:           eventID,
		AuthorID:          authorID,
		ParentID:          parentID,
		Content:           content,
		Announcement:      announcement,
		Reactions:         make([]Reaction, 0),
	}, nil
}

// React toggles a user's reaction: a new type replaces any previous one,
// and reacting with the current type removes it.
func (m *Message) React(userID uuid.UUID, reaction ReactionType) error {
	if m.Deleted {
		return shared.ErrInvalidState
	}
	if !reaction.IsValid() {
		return shared.NewDomainError("INVALID_REACTION", "Unknown reaction type")
	}

	for i, r := range m.Reactions {
		if r.UserID != userID {
			continue
		}
		if r.Type == reaction {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
		} else {
			m.Reactions[i].Type = reaction
		}
		m.touch()
		return nil
	}

	m.Reactions = append(m.Reactions, Reaction{UserID: userID, Type: reaction})
	m.touch()
	return nil
}

// ReactionCounts tallies reactions by type
func (m *Message) ReactionCounts() map[ReactionType]int {
	counts := make(map[ReactionType]int)
	for _, r := range m.Reactions {
		counts[r.Type]++
	}
	return counts
}

// TogglePin flips the pinned flag
func (m *Message) TogglePin() error {
	if m.Deleted {
		return shared.ErrInvalidState
	}
	m.Pinned = !m.Pinned
	m.touch()
	return nil
}

// SoftDelete hides the message while keeping the thread intact
func (m *Message) SoftDelete(by uuid.UUID) error {
	if m.Deleted {
		return shared.ErrInvalidState
	}

	now := time.Now()
	m.Deleted = true
	m.DeletedBy = &by
	m.DeletedAt = &now
	m.touch()

	return nil
}

func (m *Message) touch() {
	m.Touch()
	m.IncrementVersion()
}

// MessageRepository defines forum message persistence
type MessageRepository interface {
	// Create inserts a new message
	Create(ctx context.Context, m *Message) error

	// Update updates an existing message
	Update(ctx context.Context, m *Message) error

	// FindByID finds a message by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)

	// FindByEvent returns an event's top-level messages, pinned and
	// announcements first, newest first within each group
	FindByEvent(ctx context.Context, eventID uuid.UUID, page, pageSize int) ([]*Message, int64, error)

	// FindReplies returns the replies to a message, oldest first
	FindReplies(ctx context.Context, parentID uuid.UUID) ([]*Message, error)
}
