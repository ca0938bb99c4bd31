package event

import (
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Variant is one sellable merchandise variant, identified by its size and
// color values. Stock movements go through the capacity ledger as
// conditional updates keyed on (event, size, color), never by position in
// the variant list.
type Variant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;index:idx_variant_key,unique"`
	Size          string    `gorm:"not null;index:idx_variant_key,unique"`
	Color         string    `gorm:"not null;index:idx_variant_key,unique"`
	StockQuantity int       `gorm:"not null;default:0"`
	Sold          int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewVariant creates a variant for an event
func NewVariant(eventID uuid.UUID, size, color string, stock int) (*Variant, error) {
	if eventID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EVENT_ID", "Event ID cannot be empty")
	}
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)
	if size == "" || color == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant size and color are required")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock quantity cannot be negative")
	}

	now := time.Now()
	return &Variant{
		ID:            uuid.New(),
		EventID:       eventID,
		Size:          size,
		Color:         color,
		StockQuantity: stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Matches reports whether the variant has the given size and color,
// compared case-insensitively
func (v *Variant) Matches(size, color string) bool {
	return strings.EqualFold(v.Size, strings.TrimSpace(size)) &&
		strings.EqualFold(v.Color, strings.TrimSpace(color))
}

// InStock reports whether at least qty units remain
func (v *Variant) InStock(qty int) bool {
	return qty > 0 && v.StockQuantity >= qty
}
