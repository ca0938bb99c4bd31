package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEventRepository implements event.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Create creates a new event with its variants
func (r *GormEventRepository) Create(ctx context.Context, e *event.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// Update updates an existing event. Variants are managed through
// SaveVariant and the ledger, not through association writes here.
func (r *GormEventRepository) Update(ctx context.Context, e *event.Event) error {
	// Counters and the trending window belong to the capacity ledger;
	// saving them from a loaded aggregate would overwrite concurrent
	// conditional updates with stale values.
	return r.db.WithContext(ctx).
		Omit("Variants", "total_registrations", "total_revenue", "total_attendance", "views", "last_view_reset").
		Save(e).Error
}

// Delete deletes an event by ID
func (r *GormEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&event.Event{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an event by ID, variants included
func (r *GormEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	var e event.Event
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindAll returns events matching the filter with pagination
func (r *GormEventRepository) FindAll(ctx context.Context, filter event.EventFilter) ([]*event.Event, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&event.Event{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.Sort == event.SortModePopular {
		order = "total_registrations DESC, created_at DESC"
	}

	var events []*event.Event
	if err := query.
		Preload("Variants").
		Order(order).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// FindByOrganizer returns all events owned by an organizer
func (r *GormEventRepository) FindByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*event.Event, error) {
	var events []*event.Event
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindTrending returns the most viewed published events whose view window
// started after the cutoff
func (r *GormEventRepository) FindTrending(ctx context.Context, cutoff time.Time, limit int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 5
	}
	var events []*event.Event
	if err := r.db.WithContext(ctx).
		Where("status = ? AND last_view_reset >= ? AND views > 0", event.EventStatusPublished, cutoff).
		Order("views DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// SaveVariant inserts or updates a single variant
func (r *GormEventRepository) SaveVariant(ctx context.Context, v *event.Variant) error {
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteVariant removes a variant
func (r *GormEventRepository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&event.Variant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of events matching the filter
func (r *GormEventRepository) Count(ctx context.Context, filter event.EventFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&event.Event{}), filter).Count(&count).Error
	return count, err
}

func (r *GormEventRepository) applyFilter(query *gorm.DB, filter event.EventFilter) *gorm.DB {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []event.EventStatus{event.EventStatusPublished}
	}
	query = query.Where("status IN ?", statuses)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Eligibility != nil {
		query = query.Where("eligibility = ?", *filter.Eligibility)
	}
	if filter.OrganizerID != nil {
		query = query.Where("organizer_id = ?", *filter.OrganizerID)
	}
	if filter.StartAfter != nil {
		query = query.Where("start_date >= ?", *filter.StartAfter)
	}
	if filter.StartBefore != nil {
		query = query.Where("start_date <= ?", *filter.StartBefore)
	}
	if filter.EndBefore != nil {
		query = query.Where("end_date <= ?", *filter.EndBefore)
	}
	if filter.Keyword != "" {
		keyword := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}
	for _, tag := range filter.Tags {
		// tags are stored as a JSON array of lowercase strings
		query = query.Where("tags::text LIKE ?", "%\""+strings.ToLower(strings.TrimSpace(tag))+"\"%")
	}

	return query
}

var _ event.EventRepository = (*GormEventRepository)(nil)
