package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRegistrationRepository implements registration.Repository using GORM.
//
// The single-active-registration rule is enforced by a partial unique index
// (see Migrate): unique (event_id, participant_id) where status='registered'
// and type='normal'. Inserts racing for the same slot collide there and the
// loser surfaces as ErrAlreadyRegistered.
type GormRegistrationRepository struct {
	db *gorm.DB
}

// NewGormRegistrationRepository creates a new GormRegistrationRepository
func NewGormRegistrationRepository(db *gorm.DB) *GormRegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

// Create inserts a new registration
func (r *GormRegistrationRepository) Create(ctx context.Context, reg *registration.Registration) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "ticket") {
				return shared.ErrAlreadyExists
			}
			return shared.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// Update updates an existing registration
func (r *GormRegistrationRepository) Update(ctx context.Context, reg *registration.Registration) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

// SaveWithLock persists the registration guarded by its version
func (r *GormRegistrationRepository) SaveWithLock(ctx context.Context, reg *registration.Registration) error {
	result := r.db.WithContext(ctx).
		Model(reg).
		Where("id = ? AND version = ?", reg.ID, reg.Version-1).
		Updates(map[string]interface{}{
			"payment_status":       reg.PaymentStatus,
			"payment_date":         reg.PaymentDate,
			"approval_status":      reg.ApprovalStatus,
			"rejection_reason":     reg.RejectionReason,
			"status":               reg.Status,
			"attended":             reg.Attended,
			"attendance_marked_at": reg.AttendanceMarkedAt,
			"attendance_log":       reg.AttendanceLog,
			"manual_override":      reg.ManualOverride,
			"override_reason":      reg.OverrideReason,
			"qr_code":              reg.QRCode,
			"email_sent":           reg.EmailSent,
			"version":              reg.Version,
			"updated_at":           reg.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a registration by ID
func (r *GormRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*registration.Registration, error) {
	var reg registration.Registration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// FindByTicketID finds a registration by its ticket identifier
func (r *GormRegistrationRepository) FindByTicketID(ctx context.Context, ticketID string) (*registration.Registration, error) {
	var reg registration.Registration
	if err := r.db.WithContext(ctx).
		Where("ticket_id = ?", strings.ToUpper(strings.TrimSpace(ticketID))).
		First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// FindActive returns the participant's active normal registration for an event
func (r *GormRegistrationRepository) FindActive(ctx context.Context, eventID, participantID uuid.UUID) (*registration.Registration, error) {
	var reg registration.Registration
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND participant_id = ? AND status = ? AND type = ?",
			eventID, participantID, registration.StatusRegistered, registration.TypeNormal).
		First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// FindByEvent returns registrations for an event matching the filter
func (r *GormRegistrationRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, filter registration.Filter) ([]*registration.Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&registration.Registration{}).
		Where("event_id = ?", eventID)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ApprovalStatus != nil {
		query = query.Where("approval_status = ?", *filter.ApprovalStatus)
	}
	if filter.Attended != nil {
		query = query.Where("attended = ?", *filter.Attended)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var regs []*registration.Registration
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&regs).Error; err != nil {
		return nil, 0, err
	}

	return regs, total, nil
}

// FindByParticipant returns all registrations of a participant, newest first
func (r *GormRegistrationRepository) FindByParticipant(ctx context.Context, participantID uuid.UUID) ([]*registration.Registration, error) {
	var regs []*registration.Registration
	if err := r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("created_at DESC").
		Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

// CountActiveByEvent counts registrations holding a slot for the event
func (r *GormRegistrationRepository) CountActiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&registration.Registration{}).
		Where("event_id = ? AND status = ?", eventID, registration.StatusRegistered).
		Count(&count).Error
	return count, err
}

// SumQuantityByParticipant totals merchandise units across pending and
// approved orders for purchase limit enforcement
func (r *GormRegistrationRepository) SumQuantityByParticipant(ctx context.Context, eventID, participantID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&registration.Registration{}).
		Where("event_id = ? AND participant_id = ? AND type = ? AND approval_status IN ?",
			eventID, participantID, registration.TypeMerchandise,
			[]registration.ApprovalStatus{registration.ApprovalStatusPending, registration.ApprovalStatusApproved}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

// CountAttendedByEvent counts attended registrations for an event
func (r *GormRegistrationRepository) CountAttendedByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&registration.Registration{}).
		Where("event_id = ? AND attended = ?", eventID, true).
		Count(&count).Error
	return count, err
}

// isUniqueViolation reports whether the error is a unique index violation,
// covering gorm's translated error and the raw postgres code
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

var _ registration.Repository = (*GormRegistrationRepository)(nil)
