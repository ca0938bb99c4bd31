package identity

import (
	"context"

	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles profile management, interests and organizer follows
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// UpdateParticipantProfile updates a participant's editable profile fields
func (s *UserService) UpdateParticipantProfile(ctx context.Context, userID uuid.UUID, req UpdateParticipantProfileRequest) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.UpdateParticipantProfile(req.FirstName, req.LastName, req.College, req.ContactNumber); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update participant profile", zap.Error(err))
		return nil, err
	}

	profile := ToUserProfile(user)
	return &profile, nil
}

// SetInterests replaces a participant's interest tags
func (s *UserService) SetInterests(ctx context.Context, userID uuid.UUID, req SetInterestsRequest) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.SetInterests(req.Interests); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update interests", zap.Error(err))
		return nil, err
	}

	profile := ToUserProfile(user)
	return &profile, nil
}

// FollowOrganizer adds an organizer to the participant's followed list
func (s *UserService) FollowOrganizer(ctx context.Context, userID, organizerID uuid.UUID) error {
	organizer, err := s.userRepo.FindByID(ctx, organizerID)
	if err != nil {
		return shared.NewDomainError("ORGANIZER_NOT_FOUND", "Organizer not found")
	}
	if organizer.Role != identity.RoleOrganizer {
		return shared.NewDomainError("ORGANIZER_NOT_FOUND", "Organizer not found")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.FollowOrganizer(organizerID); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to follow organizer", zap.Error(err))
		return err
	}

	s.logger.Info("Organizer followed",
		zap.String("user_id", userID.String()),
		zap.String("organizer_id", organizerID.String()))

	return nil
}

// UnfollowOrganizer removes an organizer from the participant's followed list
func (s *UserService) UnfollowOrganizer(ctx context.Context, userID, organizerID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.UnfollowOrganizer(organizerID); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to unfollow organizer", zap.Error(err))
		return err
	}

	return nil
}

// UpdateOrganizerProfile updates an organizer's editable profile fields
func (s *UserService) UpdateOrganizerProfile(ctx context.Context, userID uuid.UUID, req UpdateOrganizerProfileRequest) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.UpdateOrganizerProfile(req.Name, req.Category, req.Description, req.ContactEmail, req.DiscordWebhook); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update organizer profile", zap.Error(err))
		return nil, err
	}

	profile := ToUserProfile(user)
	return &profile, nil
}

// GetProfile returns a user's profile by ID
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	profile := ToUserProfile(user)
	return &profile, nil
}

// ListOrganizers returns the public listing of organizer accounts
func (s *UserService) ListOrganizers(ctx context.Context) ([]OrganizerSummary, error) {
	organizers, err := s.userRepo.FindOrganizers(ctx)
	if err != nil {
		s.logger.Error("Failed to list organizers", zap.Error(err))
		return nil, err
	}

	summaries := make([]OrganizerSummary, 0, len(organizers))
	for _, o := range organizers {
		summaries = append(summaries, ToOrganizerSummary(o))
	}
	return summaries, nil
}

// GetOrganizer returns the public profile of a single organizer
func (s *UserService) GetOrganizer(ctx context.Context, organizerID uuid.UUID) (*OrganizerSummary, error) {
	user, err := s.userRepo.FindByID(ctx, organizerID)
	if err != nil {
		return nil, shared.NewDomainError("ORGANIZER_NOT_FOUND", "Organizer not found")
	}
	if user.Role != identity.RoleOrganizer {
		return nil, shared.NewDomainError("ORGANIZER_NOT_FOUND", "Organizer not found")
	}

	summary := ToOrganizerSummary(user)
	return &summary, nil
}
