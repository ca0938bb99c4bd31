package registration

import (
	"time"

	"github.com/felicity/backend/internal/domain/registration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterRequest represents a request to register for a normal event
type RegisterRequest struct {
	EventID       uuid.UUID         `json:"event_id" binding:"required"`
	FormResponses map[string]string `json:"form_responses"`
}

// PurchaseRequest represents a request to order merchandise
type PurchaseRequest struct {
	EventID      uuid.UUID `json:"event_id" binding:"required"`
	Size         string    `json:"size" binding:"required"`
	Color        string    `json:"color" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
	PaymentProof string    `json:"payment_proof" binding:"required"`
}

// ScanRequest represents a QR scan at the venue
type ScanRequest struct {
	EventID  uuid.UUID `json:"event_id" binding:"required"`
	TicketID string    `json:"ticket_id" binding:"required,ticketid"`
}

// ManualAttendanceRequest represents a manual attendance override
type ManualAttendanceRequest struct {
	RegistrationID uuid.UUID `json:"registration_id" binding:"required"`
	Reason         string    `json:"reason" binding:"required"`
}

// RejectOrderRequest carries the organizer's rejection reason
type RejectOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RegistrationResponse represents a registration in API responses
type RegistrationResponse struct {
	ID             uuid.UUID                      `json:"id"`
	TicketID       string                         `json:"ticket_id"`
	EventID        uuid.UUID                      `json:"event_id"`
	ParticipantID  uuid.UUID                      `json:"participant_id"`
	Type           registration.RegistrationType  `json:"type"`
	Status         registration.Status            `json:"status"`
	PaymentStatus  registration.PaymentStatus     `json:"payment_status"`
	PaymentAmount  decimal.Decimal                `json:"payment_amount"`
	PaymentDate    *time.Time                     `json:"payment_date,omitempty"`
	ApprovalStatus registration.ApprovalStatus    `json:"approval_status,omitempty"`
	VariantSize    string                         `json:"variant_size,omitempty"`
	VariantColor   string                         `json:"variant_color,omitempty"`
	Quantity       int                            `json:"quantity,omitempty"`
	Attended       bool                           `json:"attended"`
	AttendanceLog  []registration.AttendanceEntry `json:"attendance_log,omitempty"`
	QRCode         string                         `json:"qr_code,omitempty"`
	CreatedAt      time.Time                      `json:"created_at"`
}

// AttendanceStats summarizes attendance for an event
type AttendanceStats struct {
	EventID        uuid.UUID `json:"event_id"`
	TotalActive    int64     `json:"total_active"`
	TotalAttended  int64     `json:"total_attended"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// ScanResult is returned to the scanning organizer after a successful scan
type ScanResult struct {
	Registration *RegistrationResponse `json:"registration"`
}

// ToRegistrationResponse converts a registration aggregate to a response DTO
func ToRegistrationResponse(r *registration.Registration) *RegistrationResponse {
	return &RegistrationResponse{
		ID:             r.ID,
		TicketID:       r.TicketID,
		EventID:        r.EventID,
		ParticipantID:  r.ParticipantID,
		Type:           r.Type,
		Status:         r.Status,
		PaymentStatus:  r.PaymentStatus,
		PaymentAmount:  r.PaymentAmount,
		PaymentDate:    r.PaymentDate,
		ApprovalStatus: r.ApprovalStatus,
		VariantSize:    r.VariantSize,
		VariantColor:   r.VariantColor,
		Quantity:       r.Quantity,
		Attended:       r.Attended,
		AttendanceLog:  r.AttendanceLog,
		QRCode:         r.QRCode,
		CreatedAt:      r.CreatedAt,
	}
}
