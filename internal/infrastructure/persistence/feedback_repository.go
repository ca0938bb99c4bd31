package persistence

import (
	"context"
	"errors"

	"github.com/felicity/backend/internal/domain/feedback"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeedbackRepository implements feedback.Repository using GORM
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewGormFeedbackRepository creates a new GormFeedbackRepository
func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// Create inserts feedback; the unique (event, participant) index turns a
// resubmission into ErrAlreadyExists
func (r *GormFeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEvent returns an event's feedback, newest first
func (r *GormFeedbackRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, page, pageSize int) ([]*feedback.Feedback, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	query := r.db.WithContext(ctx).Model(&feedback.Feedback{}).
		Where("event_id = ?", eventID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*feedback.Feedback
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// FindByEventAndParticipant returns the participant's feedback for an event
func (r *GormFeedbackRepository) FindByEventAndParticipant(ctx context.Context, eventID, participantID uuid.UUID) (*feedback.Feedback, error) {
	var f feedback.Feedback
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND participant_id = ?", eventID, participantID).
		First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Summarize computes the rating aggregate for an event
func (r *GormFeedbackRepository) Summarize(ctx context.Context, eventID uuid.UUID) (*feedback.Summary, error) {
	type row struct {
		Rating int
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&feedback.Feedback{}).
		Select("rating, COUNT(*) as count").
		Where("event_id = ?", eventID).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &feedback.Summary{Distribution: make(map[int]int64)}
	var weighted int64
	for _, r := range rows {
		summary.Distribution[r.Rating] = r.Count
		summary.Count += r.Count
		weighted += int64(r.Rating) * r.Count
	}
	if summary.Count > 0 {
		summary.AverageScore = float64(weighted) / float64(summary.Count)
	}

	return summary, nil
}

var _ feedback.Repository = (*GormFeedbackRepository)(nil)
