package forum

import (
	"context"
	"errors"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/forum"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ForumService handles an event's discussion board. Posting and reading are
// limited to the event's organizer, admins, and participants who hold a
// registration or merchandise order for the event.
type ForumService struct {
	messageRepo      forum.MessageRepository
	eventRepo        event.EventRepository
	userRepo         identity.UserRepository
	registrationRepo registration.Repository
	logger           *zap.Logger
}

// NewForumService creates a new forum service
func NewForumService(
	messageRepo forum.MessageRepository,
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	registrationRepo registration.Repository,
	logger *zap.Logger,
) *ForumService {
	return &ForumService{
		messageRepo:      messageRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
	}
}

// PostMessage posts a message, reply or announcement to the event board.
// Announcements are organizer-only.
func (s *ForumService) PostMessage(ctx context.Context, userID, eventID uuid.UUID, req PostMessageRequest) (*MessageResponse, error) {
	user, ev, err := s.authorize(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if req.Announcement && !s.moderates(user, ev) {
		return nil, shared.ErrForbidden
	}

	if req.ParentID != nil {
		parent, err := s.messageRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.EventID != eventID {
			return nil, shared.NewDomainError("WRONG_EVENT", "Parent message belongs to a different event")
		}
		if parent.Deleted {
			return nil, shared.ErrInvalidState
		}
	}

	m, err := forum.NewMessage(eventID, userID, req.Content, req.ParentID, req.Announcement)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	resp := ToMessageResponse(m)
	return &resp, nil
}

// ListMessages returns the board's top-level messages
func (s *ForumService) ListMessages(ctx context.Context, userID, eventID uuid.UUID, page, pageSize int) (*MessageListResult, error) {
	if _, _, err := s.authorize(ctx, userID, eventID); err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	messages, total, err := s.messageRepo.FindByEvent(ctx, eventID, page, pageSize)
	if err != nil {
		return nil, err
	}

	result := &MessageListResult{
		Messages: make([]MessageResponse, 0, len(messages)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, m := range messages {
		result.Messages = append(result.Messages, ToMessageResponse(m))
	}
	return result, nil
}

// ListReplies returns a message's replies, oldest first
func (s *ForumService) ListReplies(ctx context.Context, userID, messageID uuid.UUID) ([]MessageResponse, error) {
	parent, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, userID, parent.EventID); err != nil {
		return nil, err
	}

	replies, err := s.messageRepo.FindReplies(ctx, messageID)
	if err != nil {
		return nil, err
	}

	result := make([]MessageResponse, 0, len(replies))
	for _, m := range replies {
		result = append(result, ToMessageResponse(m))
	}
	return result, nil
}

// React toggles the user's reaction on a message
func (s *ForumService) React(ctx context.Context, userID, messageID uuid.UUID, req ReactionRequest) (*MessageResponse, error) {
	m, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, userID, m.EventID); err != nil {
		return nil, err
	}

	if err := m.React(userID, forum.ReactionType(req.Type)); err != nil {
		return nil, err
	}
	if err := s.messageRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	resp := ToMessageResponse(m)
	return &resp, nil
}

// TogglePin pins or unpins a message; organizer and admin only
func (s *ForumService) TogglePin(ctx context.Context, userID, messageID uuid.UUID) (*MessageResponse, error) {
	m, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	user, ev, err := s.authorize(ctx, userID, m.EventID)
	if err != nil {
		return nil, err
	}
	if !s.moderates(user, ev) {
		return nil, shared.ErrForbidden
	}

	if err := m.TogglePin(); err != nil {
		return nil, err
	}
	if err := s.messageRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	resp := ToMessageResponse(m)
	return &resp, nil
}

// DeleteMessage soft-deletes a message. Authors may delete their own posts;
// the organizer and admins may delete any.
func (s *ForumService) DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error {
	m, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	user, ev, err := s.authorize(ctx, userID, m.EventID)
	if err != nil {
		return err
	}
	if m.AuthorID != userID && !s.moderates(user, ev) {
		return shared.ErrForbidden
	}

	if err := m.SoftDelete(userID); err != nil {
		return err
	}
	return s.messageRepo.Update(ctx, m)
}

// authorize loads the user and event and checks board access
func (s *ForumService) authorize(ctx context.Context, userID, eventID uuid.UUID) (*identity.User, *event.Event, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ev, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	if s.moderates(user, ev) {
		return user, ev, nil
	}
	if user.Role == identity.RoleParticipant {
		if _, err := s.registrationRepo.FindActive(ctx, eventID, userID); err == nil {
			return user, ev, nil
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, nil, err
		}
		qty, err := s.registrationRepo.SumQuantityByParticipant(ctx, eventID, userID)
		if err != nil {
			return nil, nil, err
		}
		if qty > 0 {
			return user, ev, nil
		}
	}
	return nil, nil, shared.ErrForbidden
}

func (s *ForumService) moderates(user *identity.User, ev *event.Event) bool {
	return user.Role == identity.RoleAdmin ||
		(user.Role == identity.RoleOrganizer && ev.OrganizerID == user.ID)
}
