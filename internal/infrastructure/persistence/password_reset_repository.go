package persistence

import (
	"context"
	"errors"

	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPasswordResetRequestRepository implements
// identity.PasswordResetRequestRepository using GORM
type GormPasswordResetRequestRepository struct {
	db *gorm.DB
}

// NewGormPasswordResetRequestRepository creates a new repository
func NewGormPasswordResetRequestRepository(db *gorm.DB) *GormPasswordResetRequestRepository {
	return &GormPasswordResetRequestRepository{db: db}
}

// Create creates a new reset request
func (r *GormPasswordResetRequestRepository) Create(ctx context.Context, request *identity.PasswordResetRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// Update updates an existing reset request
func (r *GormPasswordResetRequestRepository) Update(ctx context.Context, request *identity.PasswordResetRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// FindByID finds a reset request by ID
func (r *GormPasswordResetRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.PasswordResetRequest, error) {
	var request identity.PasswordResetRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindPendingByOrganizer returns the pending request for an organizer, if any
func (r *GormPasswordResetRequestRepository) FindPendingByOrganizer(ctx context.Context, organizerID uuid.UUID) (*identity.PasswordResetRequest, error) {
	var request identity.PasswordResetRequest
	if err := r.db.WithContext(ctx).
		Where("organizer_id = ? AND status = ?", organizerID, identity.PasswordResetStatusPending).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindByStatus returns all requests with the given status, newest first
func (r *GormPasswordResetRequestRepository) FindByStatus(ctx context.Context, status identity.PasswordResetStatus) ([]*identity.PasswordResetRequest, error) {
	var requests []*identity.PasswordResetRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

var _ identity.PasswordResetRequestRepository = (*GormPasswordResetRequestRepository)(nil)
