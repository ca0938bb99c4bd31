package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tempPasswordLength = 12

// AdminService handles admin-side account management: organizer provisioning
// with generated credentials and the password reset workflow.
type AdminService struct {
	userRepo       identity.UserRepository
	resetRepo      identity.PasswordResetRequestRepository
	notifier       Notifier
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo identity.UserRepository,
	resetRepo identity.PasswordResetRequestRepository,
	notifier Notifier,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AdminService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrganizer provisions an organizer account with a generated password.
// The credentials are emailed to the organizer; the plaintext password is also
// returned so the admin can hand it over if delivery fails.
func (s *AdminService) CreateOrganizer(ctx context.Context, req CreateOrganizerRequest) (*CreatedOrganizer, error) {
	password, err := generateTempPassword()
	if err != nil {
		s.logger.Error("Failed to generate organizer password", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate credentials")
	}

	user, err := identity.NewOrganizer(req.Email, password, req.Name, req.Category, req.Description, req.ContactEmail)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
		}
		s.logger.Error("Failed to create organizer", zap.Error(err))
		return nil, err
	}

	s.publishDomainEvents(ctx, user)

	s.sendCredentials(ctx, user, password, false)

	s.logger.Info("Organizer provisioned",
		zap.String("organizer_id", user.ID.String()),
		zap.String("email", user.Email))

	return &CreatedOrganizer{
		User:     ToUserProfile(user),
		Password: password,
	}, nil
}

// ListOrganizers returns all organizer accounts with full profiles
func (s *AdminService) ListOrganizers(ctx context.Context) ([]UserProfile, error) {
	organizers, err := s.userRepo.FindOrganizers(ctx)
	if err != nil {
		s.logger.Error("Failed to list organizers", zap.Error(err))
		return nil, err
	}

	profiles := make([]UserProfile, 0, len(organizers))
	for _, o := range organizers {
		profiles = append(profiles, ToUserProfile(o))
	}
	return profiles, nil
}

// RequestPasswordReset files a reset petition for an organizer. At most one
// pending request may exist per organizer.
func (s *AdminService) RequestPasswordReset(ctx context.Context, organizerID uuid.UUID, req RequestPasswordResetRequest) (*PasswordResetResponse, error) {
	user, err := s.userRepo.FindByID(ctx, organizerID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if user.Role != identity.RoleOrganizer {
		return nil, shared.ErrForbidden
	}

	if existing, err := s.resetRepo.FindPendingByOrganizer(ctx, organizerID); err == nil && existing != nil {
		return nil, shared.NewDomainError("RESET_ALREADY_PENDING", "A password reset request is already pending")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Failed to check pending reset requests", zap.Error(err))
		return nil, err
	}

	request, err := identity.NewPasswordResetRequest(organizerID, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.resetRepo.Create(ctx, request); err != nil {
		s.logger.Error("Failed to create reset request", zap.Error(err))
		return nil, err
	}

	user.MarkPasswordResetRequested()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The request itself is filed, only the flag is stale.
		s.logger.Error("Failed to flag pending reset on user", zap.Error(err))
	}

	s.logger.Info("Password reset requested", zap.String("organizer_id", organizerID.String()))

	response := ToPasswordResetResponse(request)
	return &response, nil
}

// ListPasswordResets returns reset requests with the given status, enriched
// with the organizer's name and email.
func (s *AdminService) ListPasswordResets(ctx context.Context, status identity.PasswordResetStatus) ([]PasswordResetResponse, error) {
	requests, err := s.resetRepo.FindByStatus(ctx, status)
	if err != nil {
		s.logger.Error("Failed to list reset requests", zap.Error(err))
		return nil, err
	}

	responses := make([]PasswordResetResponse, 0, len(requests))
	for _, r := range requests {
		response := ToPasswordResetResponse(r)
		if organizer, err := s.userRepo.FindByID(ctx, r.OrganizerID); err == nil {
			response.OrganizerName = organizer.OrganizerName
			response.OrganizerEmail = organizer.Email
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// ApprovePasswordReset approves a pending request, resets the organizer's
// password to a generated one and emails the new credentials. The plaintext
// password is returned alongside the processed request.
func (s *AdminService) ApprovePasswordReset(ctx context.Context, adminID, requestID uuid.UUID, req ProcessPasswordResetRequest) (*PasswordResetResponse, string, error) {
	request, err := s.resetRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, "", shared.NewDomainError("REQUEST_NOT_FOUND", "Password reset request not found")
	}

	organizer, err := s.userRepo.FindByID(ctx, request.OrganizerID)
	if err != nil {
		return nil, "", shared.NewDomainError("USER_NOT_FOUND", "Organizer not found")
	}

	if err := request.Approve(adminID, req.Comment); err != nil {
		return nil, "", err
	}

	password, err := generateTempPassword()
	if err != nil {
		s.logger.Error("Failed to generate reset password", zap.Error(err))
		return nil, "", shared.NewDomainError("INTERNAL_ERROR", "Failed to generate credentials")
	}
	if err := organizer.SetPassword(password); err != nil {
		return nil, "", err
	}

	if err := s.resetRepo.Update(ctx, request); err != nil {
		s.logger.Error("Failed to update reset request", zap.Error(err))
		return nil, "", err
	}
	if err := s.userRepo.Update(ctx, organizer); err != nil {
		s.logger.Error("Failed to update organizer password", zap.Error(err))
		return nil, "", err
	}

	s.publishDomainEvents(ctx, organizer)

	s.sendCredentials(ctx, organizer, password, true)

	s.logger.Info("Password reset approved",
		zap.String("request_id", requestID.String()),
		zap.String("organizer_id", organizer.ID.String()))

	response := ToPasswordResetResponse(request)
	response.OrganizerName = organizer.OrganizerName
	response.OrganizerEmail = organizer.Email
	return &response, password, nil
}

// RejectPasswordReset rejects a pending request with an admin comment
func (s *AdminService) RejectPasswordReset(ctx context.Context, adminID, requestID uuid.UUID, req ProcessPasswordResetRequest) (*PasswordResetResponse, error) {
	request, err := s.resetRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, shared.NewDomainError("REQUEST_NOT_FOUND", "Password reset request not found")
	}

	if err := request.Reject(adminID, req.Comment); err != nil {
		return nil, err
	}

	if err := s.resetRepo.Update(ctx, request); err != nil {
		s.logger.Error("Failed to update reset request", zap.Error(err))
		return nil, err
	}

	if organizer, err := s.userRepo.FindByID(ctx, request.OrganizerID); err == nil {
		organizer.ClearPasswordResetRequested()
		if err := s.userRepo.Update(ctx, organizer); err != nil {
			s.logger.Error("Failed to clear pending reset flag", zap.Error(err))
		}
	}

	s.logger.Info("Password reset rejected", zap.String("request_id", requestID.String()))

	response := ToPasswordResetResponse(request)
	return &response, nil
}

// Stats returns account counts for the admin dashboard
func (s *AdminService) Stats(ctx context.Context) (map[string]int64, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	participants, err := s.userRepo.CountByRole(ctx, identity.RoleParticipant)
	if err != nil {
		return nil, err
	}
	organizers, err := s.userRepo.CountByRole(ctx, identity.RoleOrganizer)
	if err != nil {
		return nil, err
	}

	return map[string]int64{
		"total_users":  total,
		"participants": participants,
		"organizers":   organizers,
	}, nil
}

func (s *AdminService) sendCredentials(ctx context.Context, user *identity.User, password string, reset bool) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.SendCredentials(ctx, CredentialsEmail{
		To:            user.Email,
		OrganizerName: user.OrganizerName,
		Email:         user.Email,
		Password:      password,
		Reset:         reset,
	})
	if err != nil {
		s.logger.Warn("Failed to send credentials email",
			zap.String("organizer_id", user.ID.String()),
			zap.Error(err))
	}
}

func (s *AdminService) publishDomainEvents(ctx context.Context, u *identity.User) {
	if s.eventPublisher == nil {
		return
	}
	events := u.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	u.ClearDomainEvents()
}

// generateTempPassword builds a random password that satisfies the account
// password rules (at least one letter and one digit).
func generateTempPassword() (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const charset = letters + digits

	buf := make([]byte, tempPasswordLength)
	for i := range buf {
		var pool string
		switch i {
		case 0:
			pool = letters
		case 1:
			pool = digits
		default:
			pool = charset
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
		if err != nil {
			return "", err
		}
		buf[i] = pool[n.Int64()]
	}
	return string(buf), nil
}
