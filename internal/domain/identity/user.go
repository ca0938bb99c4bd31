package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role represents the role of a user in the platform
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
)

// ParticipantType classifies participants for eligibility checks
type ParticipantType string

const (
	ParticipantTypeIIIT    ParticipantType = "IIIT"
	ParticipantTypeNonIIIT ParticipantType = "Non-IIIT"
)

// IIITEmailDomain is the mail domain required for IIIT participants
const IIITEmailDomain = "iiit.ac.in"

// Password cost for bcrypt
const bcryptCost = 12

// User represents an account in the platform.
// It is the aggregate root for identity operations; organizer and participant
// profile fields are populated according to the role.
type User struct {
	shared.BaseAggregateRoot
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"not null;index"`

	// Participant profile
	FirstName          string
	LastName           string
	ParticipantType    ParticipantType
	College            string
	ContactNumber      string
	Interests          []string    `gorm:"serializer:json"`
	FollowedOrganizers []uuid.UUID `gorm:"serializer:json"`

	// Organizer profile
	OrganizerName  string `gorm:"index"`
	Category       string
	Description    string
	ContactEmail   string
	DiscordWebhook string
	IsApproved     bool

	PasswordResetRequested bool
	LastLoginAt            *time.Time
}

// NewParticipant creates a new participant account
func NewParticipant(email, password, firstName, lastName string, participantType ParticipantType, college, contactNumber string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	switch participantType {
	case ParticipantTypeIIIT:
		if !strings.HasSuffix(email, "@"+IIITEmailDomain) && !strings.HasSuffix(email, "."+IIITEmailDomain) {
			return nil, shared.NewDomainError("INVALID_EMAIL_DOMAIN", "IIIT participants must register with an institute email address")
		}
	case ParticipantTypeNonIIIT:
		if college == "" {
			return nil, shared.NewDomainError("INVALID_COLLEGE", "College is required for non-IIIT participants")
		}
	default:
		return nil, shared.NewDomainError("INVALID_PARTICIPANT_TYPE", "Participant type must be IIIT or Non-IIIT")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Email:              email,
		PasswordHash:       passwordHash,
		Role:               RoleParticipant,
		FirstName:          strings.TrimSpace(firstName),
		LastName:           strings.TrimSpace(lastName),
		ParticipantType:    participantType,
		College:            strings.TrimSpace(college),
		ContactNumber:      strings.TrimSpace(contactNumber),
		Interests:          make([]string, 0),
		FollowedOrganizers: make([]uuid.UUID, 0),
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewOrganizer creates a new organizer account. Organizers are provisioned by
// admins and start out approved for login.
func NewOrganizer(email, password, name, category, description, contactEmail string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Organizer name cannot be empty")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              RoleOrganizer,
		OrganizerName:     strings.TrimSpace(name),
		Category:          strings.TrimSpace(category),
		Description:       strings.TrimSpace(description),
		ContactEmail:      strings.ToLower(strings.TrimSpace(contactEmail)),
		IsApproved:        true,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewAdmin creates a new admin account
func NewAdmin(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              RoleAdmin,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// FullName returns the participant's full name, or the organizer name
func (u *User) FullName() string {
	if u.Role == RoleOrganizer {
		return u.OrganizerName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// ChangePassword changes the user's password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.PasswordResetRequested = false
	u.Touch()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))

	return nil
}

// CanLogin returns true if the account is allowed to authenticate.
// Organizers must be approved by an admin before they can log in.
func (u *User) CanLogin() bool {
	if u.Role == RoleOrganizer && !u.IsApproved {
		return false
	}
	return true
}

// RecordLogin records a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()
}

// UpdateParticipantProfile updates the mutable participant profile fields
func (u *User) UpdateParticipantProfile(firstName, lastName, college, contactNumber string) error {
	if u.Role != RoleParticipant {
		return shared.ErrInvalidState
	}
	if strings.TrimSpace(firstName) == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}

	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.College = strings.TrimSpace(college)
	u.ContactNumber = strings.TrimSpace(contactNumber)
	u.Touch()
	u.IncrementVersion()

	return nil
}

// SetInterests replaces the participant's interest tags
func (u *User) SetInterests(interests []string) error {
	if u.Role != RoleParticipant {
		return shared.ErrInvalidState
	}

	seen := make(map[string]bool)
	unique := make([]string, 0, len(interests))
	for _, tag := range interests {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		unique = append(unique, tag)
	}

	u.Interests = unique
	u.Touch()
	u.IncrementVersion()

	return nil
}

// FollowOrganizer adds an organizer to the participant's followed list
func (u *User) FollowOrganizer(organizerID uuid.UUID) error {
	if u.Role != RoleParticipant {
		return shared.ErrInvalidState
	}
	if organizerID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORGANIZER_ID", "Organizer ID cannot be empty")
	}
	if u.IsFollowing(organizerID) {
		return shared.NewDomainError("ALREADY_FOLLOWING", "Already following this organizer")
	}

	u.FollowedOrganizers = append(u.FollowedOrganizers, organizerID)
	u.Touch()
	u.IncrementVersion()

	return nil
}

// UnfollowOrganizer removes an organizer from the participant's followed list
func (u *User) UnfollowOrganizer(organizerID uuid.UUID) error {
	if u.Role != RoleParticipant {
		return shared.ErrInvalidState
	}

	found := false
	remaining := make([]uuid.UUID, 0, len(u.FollowedOrganizers))
	for _, id := range u.FollowedOrganizers {
		if id == organizerID {
			found = true
			continue
		}
		remaining = append(remaining, id)
	}
	if !found {
		return shared.NewDomainError("NOT_FOLLOWING", "Not following this organizer")
	}

	u.FollowedOrganizers = remaining
	u.Touch()
	u.IncrementVersion()

	return nil
}

// IsFollowing checks whether the participant follows the given organizer
func (u *User) IsFollowing(organizerID uuid.UUID) bool {
	for _, id := range u.FollowedOrganizers {
		if id == organizerID {
			return true
		}
	}
	return false
}

// UpdateOrganizerProfile updates the mutable organizer profile fields
func (u *User) UpdateOrganizerProfile(name, category, description, contactEmail, discordWebhook string) error {
	if u.Role != RoleOrganizer {
		return shared.ErrInvalidState
	}
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Organizer name cannot be empty")
	}

	u.OrganizerName = strings.TrimSpace(name)
	u.Category = strings.TrimSpace(category)
	u.Description = strings.TrimSpace(description)
	u.ContactEmail = strings.ToLower(strings.TrimSpace(contactEmail))
	u.DiscordWebhook = strings.TrimSpace(discordWebhook)
	u.Touch()
	u.IncrementVersion()

	return nil
}

// Approve marks an organizer account as approved for login
func (u *User) Approve() error {
	if u.Role != RoleOrganizer {
		return shared.ErrInvalidState
	}
	if u.IsApproved {
		return shared.NewDomainError("ALREADY_APPROVED", "Organizer is already approved")
	}

	u.IsApproved = true
	u.Touch()
	u.IncrementVersion()

	u.AddDomainEvent(NewOrganizerApprovedEvent(u))

	return nil
}

// MarkPasswordResetRequested flags that a reset request is pending for this account
func (u *User) MarkPasswordResetRequested() {
	u.PasswordResetRequested = true
	u.Touch()
	u.IncrementVersion()
}

// ClearPasswordResetRequested clears the pending reset flag
func (u *User) ClearPasswordResetRequested() {
	u.PasswordResetRequested = false
	u.Touch()
	u.IncrementVersion()
}

// MatchesEligibility reports whether the participant satisfies an event
// eligibility rule ("all", "IIIT-only", "Non-IIIT-only").
func (u *User) MatchesEligibility(eligibility string) bool {
	switch eligibility {
	case "IIIT-only":
		return u.ParticipantType == ParticipantTypeIIIT
	case "Non-IIIT-only":
		return u.ParticipantType == ParticipantTypeNonIIIT
	default:
		return true
	}
}

// Validation functions

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
