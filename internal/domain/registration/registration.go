package registration

import (
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegistrationType distinguishes event sign-ups from merchandise orders
type RegistrationType string

const (
	TypeNormal      RegistrationType = "normal"
	TypeMerchandise RegistrationType = "merchandise"
)

// PaymentStatus represents the payment state of a registration
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// ApprovalStatus represents the organizer decision on a merchandise order
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Status is the lifecycle state of the registration itself
type Status string

const (
	StatusRegistered Status = "registered"
	StatusCancelled  Status = "cancelled"
	StatusRejected   Status = "rejected"
	StatusWaitlisted Status = "waitlisted"
)

// AttendanceMethod records how attendance was marked
type AttendanceMethod string

const (
	AttendanceMethodScan   AttendanceMethod = "scan"
	AttendanceMethodManual AttendanceMethod = "manual"
)

// AttendanceEntry is one append-only audit record of an attendance marking
type AttendanceEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	ScannedBy uuid.UUID        `json:"scannedBy"`
	Method    AttendanceMethod `json:"type"`
	Notes     string           `json:"notes,omitempty"`
}

// Registration is the aggregate root tying a participant to an event. It
// carries the ticket, payment state, the organizer approval decision for
// merchandise orders, and the attendance audit trail.
//
// A participant may hold at most one active (status=registered) normal
// registration per event; the database enforces this with a partial unique
// index, and unique violations surface as ErrAlreadyRegistered.
type Registration struct {
	shared.BaseAggregateRoot
	TicketID      string           `gorm:"uniqueIndex;not null"`
	EventID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_event_participant"`
	ParticipantID uuid.UUID        `gorm:"type:uuid;not null;index:idx_event_participant"`
	Type          RegistrationType `gorm:"not null;index"`

	FormResponses map[string]string `gorm:"serializer:json"`

	// Merchandise order details
	VariantSize  string
	VariantColor string
	Quantity     int
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	PaymentStatus PaymentStatus   `gorm:"not null;index"`
	PaymentAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	PaymentDate   *time.Time
	PaymentProof  string

	ApprovalStatus  ApprovalStatus `gorm:"index"`
	RejectionReason string

	Status Status `gorm:"not null;index"`

	Attended           bool
	AttendanceMarkedAt *time.Time
	AttendanceLog      []AttendanceEntry `gorm:"serializer:json"`
	ManualOverride     bool
	OverrideReason     string

	// Base64 PNG; stays empty until payment is completed
	QRCode    string `gorm:"type:text"`
	EmailSent bool
}

// NewRegistration creates an immediately-accepted normal registration.
// Payment is recorded as completed at registration time, covering both free
// and prepaid events.
func NewRegistration(eventID, participantID uuid.UUID, ticketID string, formResponses map[string]string, fee decimal.Decimal) (*Registration, error) {
	if eventID == uuid.Nil || participantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Event and participant IDs are required")
	}
	if ticketID == "" {
		return nil, shared.NewDomainError("INVALID_TICKET", "Ticket ID cannot be empty")
	}
	if fee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee cannot be negative")
	}
	if formResponses == nil {
		formResponses = make(map[string]string)
	}

	now := time.Now()
	r := &Registration{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TicketID:          ticketID,
		EventID:           eventID,
		ParticipantID:     participantID,
		Type:              TypeNormal,
		FormResponses:     formResponses,
		PaymentStatus:     PaymentStatusCompleted,
		PaymentAmount:     fee,
		PaymentDate:       &now,
		Status:            StatusRegistered,
		AttendanceLog:     make([]AttendanceEntry, 0),
	}

	r.AddDomainEvent(NewRegistrationCreatedEvent(r))

	return r, nil
}

// NewMerchandiseOrder creates a merchandise order awaiting organizer
// approval. Payment stays pending and no stock is held until approval.
func NewMerchandiseOrder(eventID, participantID uuid.UUID, ticketID, size, color string, quantity int, totalPrice decimal.Decimal, paymentProof string) (*Registration, error) {
	if eventID == uuid.Nil || participantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Event and participant IDs are required")
	}
	if ticketID == "" {
		return nil, shared.NewDomainError("INVALID_TICKET", "Ticket ID cannot be empty")
	}
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)
	if size == "" || color == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant size and color are required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if totalPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Total price cannot be negative")
	}
	if strings.TrimSpace(paymentProof) == "" {
		return nil, shared.NewDomainError("MISSING_PAYMENT_PROOF", "Payment proof is required for merchandise orders")
	}

	r := &Registration{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TicketID:          ticketID,
		EventID:           eventID,
		ParticipantID:     participantID,
		Type:              TypeMerchandise,
		FormResponses:     make(map[string]string),
		VariantSize:       size,
		VariantColor:      color,
		Quantity:          quantity,
		TotalPrice:        totalPrice,
		PaymentStatus:     PaymentStatusPending,
		PaymentAmount:     totalPrice,
		PaymentProof:      strings.TrimSpace(paymentProof),
		ApprovalStatus:    ApprovalStatusPending,
		Status:            StatusRegistered,
		AttendanceLog:     make([]AttendanceEntry, 0),
	}

	r.AddDomainEvent(NewRegistrationCreatedEvent(r))

	return r, nil
}

// Approve marks a pending merchandise order as approved and completes its
// payment. Approval is terminal; approving twice fails.
func (r *Registration) Approve() error {
	if r.Type != TypeMerchandise {
		return shared.ErrInvalidState
	}
	if r.ApprovalStatus != ApprovalStatusPending {
		return shared.ErrAlreadyProcessed
	}
	if r.Status != StatusRegistered {
		return shared.ErrInvalidState
	}

	now := time.Now()
	r.ApprovalStatus = ApprovalStatusApproved
	r.PaymentStatus = PaymentStatusCompleted
	r.PaymentDate = &now
	r.touch()

	r.AddDomainEvent(NewOrderApprovedEvent(r))

	return nil
}

// Reject marks a pending merchandise order as rejected. The decision is
// terminal and releases nothing since rejection never held stock.
func (r *Registration) Reject(reason string) error {
	if r.Type != TypeMerchandise {
		return shared.ErrInvalidState
	}
	if r.ApprovalStatus != ApprovalStatusPending {
		return shared.ErrAlreadyProcessed
	}

	r.ApprovalStatus = ApprovalStatusRejected
	r.PaymentStatus = PaymentStatusFailed
	r.Status = StatusRejected
	r.RejectionReason = strings.TrimSpace(reason)
	r.touch()

	r.AddDomainEvent(NewOrderRejectedEvent(r))

	return nil
}

// MarkAttendance marks the ticket attended exactly once and appends an
// audit entry. A second attempt fails with ErrAlreadyAttended; callers can
// report the original AttendanceMarkedAt to the scanner.
func (r *Registration) MarkAttendance(scannedBy uuid.UUID, method AttendanceMethod, notes string) error {
	if r.Status != StatusRegistered {
		return shared.ErrInvalidState
	}
	if r.PaymentStatus != PaymentStatusCompleted {
		return shared.ErrPaymentNotCompleted
	}
	if r.Attended {
		return shared.ErrAlreadyAttended
	}

	now := time.Now()
	r.Attended = true
	r.AttendanceMarkedAt = &now
	r.AttendanceLog = append(r.AttendanceLog, AttendanceEntry{
		Timestamp: now,
		ScannedBy: scannedBy,
		Method:    method,
		Notes:     strings.TrimSpace(notes),
	})
	if method == AttendanceMethodManual {
		r.ManualOverride = true
		r.OverrideReason = strings.TrimSpace(notes)
	}
	r.touch()

	r.AddDomainEvent(NewAttendanceMarkedEvent(r, method))

	return nil
}

// Cancel cancels an active registration before the event starts. Completed
// payments are marked refunded.
func (r *Registration) Cancel(eventStart time.Time) error {
	if r.Status != StatusRegistered {
		return shared.ErrInvalidState
	}
	if r.Attended {
		return shared.NewDomainError("ALREADY_ATTENDED", "Cannot cancel after attendance has been marked")
	}
	if !time.Now().Before(eventStart) {
		return shared.NewDomainError("EVENT_STARTED", "Cannot cancel after the event has started")
	}

	r.Status = StatusCancelled
	if r.PaymentStatus == PaymentStatusCompleted {
		r.PaymentStatus = PaymentStatusRefunded
	} else {
		r.PaymentStatus = PaymentStatusFailed
	}
	r.touch()

	r.AddDomainEvent(NewRegistrationCancelledEvent(r))

	return nil
}

// AttachQRCode stores the rendered entry pass. Only completed payments may
// carry a QR code.
func (r *Registration) AttachQRCode(qr string) error {
	if r.PaymentStatus != PaymentStatusCompleted {
		return shared.ErrPaymentNotCompleted
	}
	r.QRCode = qr
	r.touch()
	return nil
}

// MarkEmailSent records that the confirmation email went out
func (r *Registration) MarkEmailSent() {
	r.EmailSent = true
	r.touch()
}

// IsActive reports whether this registration currently holds a slot
func (r *Registration) IsActive() bool {
	return r.Status == StatusRegistered
}

func (r *Registration) touch() {
	r.Touch()
	r.IncrementVersion()
}
