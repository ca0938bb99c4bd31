package identity

import (
	"time"

	"github.com/felicity/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterParticipantRequest contains the input for participant self-signup
type RegisterParticipantRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name"`
	ParticipantType string `json:"participant_type" binding:"required,oneof=IIIT Non-IIIT"`
	College         string `json:"college"`
	ContactNumber   string `json:"contact_number"`
}

// LoginRequest contains the input for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult contains the token pair and profile returned on login / signup
type AuthResult struct {
	AccessToken           string      `json:"access_token"`
	RefreshToken          string      `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time   `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time   `json:"refresh_token_expires_at"`
	TokenType             string      `json:"token_type"`
	User                  UserProfile `json:"user"`
}

// RefreshRequest contains the input for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResult contains the refreshed token pair
type RefreshResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutRequest carries the token identifiers to revoke
type LogoutRequest struct {
	UserID          uuid.UUID
	AccessTokenJTI  string
	AccessExpiresAt time.Time
}

// ChangePasswordRequest contains the input for a self-service password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdateParticipantProfileRequest contains the mutable participant fields
type UpdateParticipantProfileRequest struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name"`
	College       string `json:"college"`
	ContactNumber string `json:"contact_number"`
}

// SetInterestsRequest replaces the participant's interest tags
type SetInterestsRequest struct {
	Interests []string `json:"interests"`
}

// UpdateOrganizerProfileRequest contains the mutable organizer fields
type UpdateOrganizerProfileRequest struct {
	Name           string `json:"name" binding:"required"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	ContactEmail   string `json:"contact_email"`
	DiscordWebhook string `json:"discord_webhook"`
}

// CreateOrganizerRequest contains the input for admin organizer provisioning
type CreateOrganizerRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	ContactEmail string `json:"contact_email"`
}

// CreatedOrganizer is returned after provisioning. Password is the generated
// plaintext credential, surfaced once to the admin in case the email fails.
type CreatedOrganizer struct {
	User     UserProfile `json:"user"`
	Password string      `json:"password"`
}

// RequestPasswordResetRequest is an organizer's reset petition
type RequestPasswordResetRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ProcessPasswordResetRequest is the admin decision on a reset petition
type ProcessPasswordResetRequest struct {
	Comment string `json:"comment"`
}

// PasswordResetResponse is the outward shape of a reset request
type PasswordResetResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrganizerID    uuid.UUID  `json:"organizer_id"`
	OrganizerName  string     `json:"organizer_name,omitempty"`
	OrganizerEmail string     `json:"organizer_email,omitempty"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	AdminComment   string     `json:"admin_comment,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UserProfile is the outward shape of a user account
type UserProfile struct {
	ID                 uuid.UUID   `json:"id"`
	Email              string      `json:"email"`
	Role               string      `json:"role"`
	FirstName          string      `json:"first_name,omitempty"`
	LastName           string      `json:"last_name,omitempty"`
	ParticipantType    string      `json:"participant_type,omitempty"`
	College            string      `json:"college,omitempty"`
	ContactNumber      string      `json:"contact_number,omitempty"`
	Interests          []string    `json:"interests,omitempty"`
	FollowedOrganizers []uuid.UUID `json:"followed_organizers,omitempty"`
	OrganizerName      string      `json:"organizer_name,omitempty"`
	Category           string      `json:"category,omitempty"`
	Description        string      `json:"description,omitempty"`
	ContactEmail       string      `json:"contact_email,omitempty"`
	IsApproved         bool        `json:"is_approved,omitempty"`
	LastLoginAt        *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

// OrganizerSummary is the public listing shape of an organizer
type OrganizerSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	Description  string    `json:"description,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
}

// ToUserProfile converts a user aggregate to its outward shape
func ToUserProfile(u *identity.User) UserProfile {
	return UserProfile{
		ID:                 u.ID,
		Email:              u.Email,
		Role:               string(u.Role),
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		ParticipantType:    string(u.ParticipantType),
		College:            u.College,
		ContactNumber:      u.ContactNumber,
		Interests:          u.Interests,
		FollowedOrganizers: u.FollowedOrganizers,
		OrganizerName:      u.OrganizerName,
		Category:           u.Category,
		Description:        u.Description,
		ContactEmail:       u.ContactEmail,
		IsApproved:         u.IsApproved,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

// ToOrganizerSummary converts an organizer account to its public shape
func ToOrganizerSummary(u *identity.User) OrganizerSummary {
	return OrganizerSummary{
		ID:           u.ID,
		Name:         u.OrganizerName,
		Category:     u.Category,
		Description:  u.Description,
		ContactEmail: u.ContactEmail,
	}
}

// ToPasswordResetResponse converts a reset request to its outward shape
func ToPasswordResetResponse(r *identity.PasswordResetRequest) PasswordResetResponse {
	return PasswordResetResponse{
		ID:           r.ID,
		OrganizerID:  r.OrganizerID,
		Reason:       r.Reason,
		Status:       string(r.Status),
		AdminComment: r.AdminComment,
		ProcessedAt:  r.ProcessedAt,
		CreatedAt:    r.CreatedAt,
	}
}
