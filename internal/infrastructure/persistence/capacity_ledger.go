package persistence

import (
	"context"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCapacityLedger implements event.CapacityLedger with single-statement
// conditional updates. Counters are never read, computed and written back;
// the WHERE clause carries the invariant and RowsAffected tells us whether
// the database accepted the movement. Two concurrent requests for the last
// slot therefore serialize on the row and exactly one of them wins.
type GormCapacityLedger struct {
	db *gorm.DB
}

// NewGormCapacityLedger creates a new GormCapacityLedger
func NewGormCapacityLedger(db *gorm.DB) *GormCapacityLedger {
	return &GormCapacityLedger{db: db}
}

// ReserveSlot admits one registration while capacity remains
func (l *GormCapacityLedger) ReserveSlot(ctx context.Context, eventID uuid.UUID, fee decimal.Decimal) error {
	result := l.db.WithContext(ctx).Model(&event.Event{}).
		Where("id = ? AND (registration_limit = 0 OR total_registrations < registration_limit)", eventID).
		Updates(map[string]interface{}{
			"total_registrations": gorm.Expr("total_registrations + 1"),
			"total_revenue":       gorm.Expr("total_revenue + ?", fee),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return l.classifyEventMiss(ctx, eventID, shared.ErrEventFull)
	}
	return nil
}

// ReleaseSlot returns one admission on cancellation
func (l *GormCapacityLedger) ReleaseSlot(ctx context.Context, eventID uuid.UUID, amount decimal.Decimal) error {
	result := l.db.WithContext(ctx).Model(&event.Event{}).
		Where("id = ? AND total_registrations > 0", eventID).
		Updates(map[string]interface{}{
			"total_registrations": gorm.Expr("total_registrations - 1"),
			"total_revenue":       gorm.Expr("total_revenue - ?", amount),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return l.classifyEventMiss(ctx, eventID, shared.ErrInvalidState)
	}
	return nil
}

// CommitStockSale decrements variant stock for an approved order and rolls
// the sale into the event totals. The stock guard and the decrement are one
// statement, so stock can never go negative no matter how many approvals
// race.
func (l *GormCapacityLedger) CommitStockSale(ctx context.Context, eventID uuid.UUID, size, color string, qty int, amount decimal.Decimal) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&event.Variant{}).
			Where("event_id = ? AND LOWER(size) = LOWER(?) AND LOWER(color) = LOWER(?) AND stock_quantity >= ?",
				eventID, size, color, qty).
			Updates(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
				"sold":           gorm.Expr("sold + ?", qty),
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&event.Variant{}).
				Where("event_id = ? AND LOWER(size) = LOWER(?) AND LOWER(color) = LOWER(?)", eventID, size, color).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrInsufficientStock
		}

		totals := tx.Model(&event.Event{}).
			Where("id = ?", eventID).
			Updates(map[string]interface{}{
				"total_registrations": gorm.Expr("total_registrations + 1"),
				"total_revenue":       gorm.Expr("total_revenue + ?", amount),
				"updated_at":          time.Now(),
			})
		if totals.Error != nil {
			return totals.Error
		}
		if totals.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// IncrementAttendance adds one to the event's attendance total
func (l *GormCapacityLedger) IncrementAttendance(ctx context.Context, eventID uuid.UUID) error {
	result := l.db.WithContext(ctx).Model(&event.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"total_attendance": gorm.Expr("total_attendance + 1"),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementViews adds one to the event's view counter
func (l *GormCapacityLedger) IncrementViews(ctx context.Context, eventID uuid.UUID) error {
	return l.db.WithContext(ctx).Model(&event.Event{}).
		Where("id = ?", eventID).
		Update("views", gorm.Expr("views + 1")).Error
}

// ResetViews zeroes the view counter and restarts the trending window
func (l *GormCapacityLedger) ResetViews(ctx context.Context, eventID uuid.UUID) error {
	return l.db.WithContext(ctx).Model(&event.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"views":           0,
			"last_view_reset": time.Now(),
		}).Error
}

// classifyEventMiss tells a missing event apart from a failed guard
func (l *GormCapacityLedger) classifyEventMiss(ctx context.Context, eventID uuid.UUID, guardErr error) error {
	var count int64
	if err := l.db.WithContext(ctx).Model(&event.Event{}).
		Where("id = ?", eventID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return guardErr
}

var _ event.CapacityLedger = (*GormCapacityLedger)(nil)
