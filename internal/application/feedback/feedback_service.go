package feedback

import (
	"context"
	"errors"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/feedback"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedbackService handles one-time event ratings. Participants submit
// against events they are registered for; organizers read their own
// events' feedback anonymized.
type FeedbackService struct {
	feedbackRepo     feedback.Repository
	eventRepo        event.EventRepository
	userRepo         identity.UserRepository
	registrationRepo registration.Repository
	logger           *zap.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	feedbackRepo feedback.Repository,
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	registrationRepo registration.Repository,
	logger *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo:     feedbackRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
	}
}

// Submit files the participant's one-time rating for an event they hold a
// registration or merchandise order for. Feedback is immutable once filed.
func (s *FeedbackService) Submit(ctx context.Context, participantID, eventID uuid.UUID, req SubmitFeedbackRequest) (*FeedbackResponse, error) {
	user, err := s.userRepo.FindByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if user.Role != identity.RoleParticipant {
		return nil, shared.ErrForbidden
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.requireRegistration(ctx, eventID, participantID); err != nil {
		return nil, err
	}

	if _, err := s.feedbackRepo.FindByEventAndParticipant(ctx, eventID, participantID); err == nil {
		return nil, shared.NewDomainError("ALREADY_SUBMITTED", "Feedback for this event has already been submitted")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	f, err := feedback.New(eventID, participantID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.feedbackRepo.Create(ctx, f); err != nil {
		// Unique index backs up the pre-check under concurrent submits
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_SUBMITTED", "Feedback for this event has already been submitted")
		}
		return nil, err
	}

	resp := ToFeedbackResponse(f)
	return &resp, nil
}

// List returns an event's feedback for its organizer, anonymized, with the
// rating aggregate alongside
func (s *FeedbackService) List(ctx context.Context, requesterID, eventID uuid.UUID, page, pageSize int) (*FeedbackListResult, error) {
	if err := s.requireOwner(ctx, requesterID, eventID); err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	items, total, err := s.feedbackRepo.FindByEvent(ctx, eventID, page, pageSize)
	if err != nil {
		return nil, err
	}
	summary, err := s.feedbackRepo.Summarize(ctx, eventID)
	if err != nil {
		return nil, err
	}

	result := &FeedbackListResult{
		Feedback: make([]FeedbackResponse, 0, len(items)),
		Summary:  *summary,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, f := range items {
		resp := ToFeedbackResponse(f)
		resp.ParticipantID = uuid.Nil // feedback reads back anonymous
		result.Feedback = append(result.Feedback, resp)
	}
	return result, nil
}

// Summary returns an event's rating aggregate for its organizer
func (s *FeedbackService) Summary(ctx context.Context, requesterID, eventID uuid.UUID) (*feedback.Summary, error) {
	if err := s.requireOwner(ctx, requesterID, eventID); err != nil {
		return nil, err
	}
	return s.feedbackRepo.Summarize(ctx, eventID)
}

// MyFeedback returns the participant's own feedback for an event
func (s *FeedbackService) MyFeedback(ctx context.Context, participantID, eventID uuid.UUID) (*FeedbackResponse, error) {
	f, err := s.feedbackRepo.FindByEventAndParticipant(ctx, eventID, participantID)
	if err != nil {
		return nil, err
	}
	resp := ToFeedbackResponse(f)
	return &resp, nil
}

func (s *FeedbackService) requireRegistration(ctx context.Context, eventID, participantID uuid.UUID) error {
	if _, err := s.registrationRepo.FindActive(ctx, eventID, participantID); err == nil {
		return nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	qty, err := s.registrationRepo.SumQuantityByParticipant(ctx, eventID, participantID)
	if err != nil {
		return err
	}
	if qty > 0 {
		return nil
	}
	return shared.NewDomainError("NOT_REGISTERED", "Feedback requires a registration for this event")
}

func (s *FeedbackService) requireOwner(ctx context.Context, requesterID, eventID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, requesterID)
	if err != nil {
		return err
	}
	ev, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if user.Role == identity.RoleAdmin {
		return nil
	}
	if user.Role == identity.RoleOrganizer && ev.OrganizerID == user.ID {
		return nil
	}
	return shared.ErrForbidden
}
