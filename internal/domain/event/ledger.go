package event

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CapacityLedger is the single writer for event admission counters and
// variant stock. Every operation is a conditional atomic update against
// current database state; implementations must never read a counter and
// write back a computed value. A failed condition surfaces as a domain
// error (ErrEventFull, ErrInsufficientStock), not as a silent no-op.
type CapacityLedger interface {
	// ReserveSlot admits one registration: increments total_registrations
	// only while under the registration limit (or when the limit is 0,
	// meaning unlimited) and adds the fee to total revenue.
	// Fails with ErrEventFull when the event is at capacity.
	ReserveSlot(ctx context.Context, eventID uuid.UUID, fee decimal.Decimal) error

	// ReleaseSlot returns one admission on cancellation and subtracts the
	// refunded amount from total revenue.
	ReleaseSlot(ctx context.Context, eventID uuid.UUID, amount decimal.Decimal) error

	// CommitStockSale decrements stock for the variant matching
	// (eventID, size, color) by qty only while enough stock remains,
	// increments its sold counter, and adds the sale amount and one
	// registration to the event totals.
	// Fails with ErrInsufficientStock when stock would go negative and
	// with ErrNotFound when no variant matches.
	CommitStockSale(ctx context.Context, eventID uuid.UUID, size, color string, qty int, amount decimal.Decimal) error

	// IncrementAttendance adds one to the event's attendance total.
	IncrementAttendance(ctx context.Context, eventID uuid.UUID) error

	// IncrementViews adds one to the event's view counter.
	IncrementViews(ctx context.Context, eventID uuid.UUID) error

	// ResetViews zeroes the view counter and restarts the trending window.
	ResetViews(ctx context.Context, eventID uuid.UUID) error
}
