package persistence

import (
	"context"
	"errors"

	"github.com/felicity/backend/internal/domain/forum"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMessageRepository implements forum.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create inserts a new message
func (r *GormMessageRepository) Create(ctx context.Context, m *forum.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Update updates an existing message
func (r *GormMessageRepository) Update(ctx context.Context, m *forum.Message) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// FindByID finds a message by ID
func (r *GormMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*forum.Message, error) {
	var m forum.Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByEvent returns an event's top-level messages, pinned and
// announcements first, newest first within each group
func (r *GormMessageRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, page, pageSize int) ([]*forum.Message, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	query := r.db.WithContext(ctx).Model(&forum.Message{}).
		Where("event_id = ? AND parent_id IS NULL AND deleted = ?", eventID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []*forum.Message
	if err := query.
		Order("announcement DESC, pinned DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// FindReplies returns the replies to a message, oldest first
func (r *GormMessageRepository) FindReplies(ctx context.Context, parentID uuid.UUID) ([]*forum.Message, error) {
	var messages []*forum.Message
	if err := r.db.WithContext(ctx).
		Where("parent_id = ? AND deleted = ?", parentID, false).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

var _ forum.MessageRepository = (*GormMessageRepository)(nil)
