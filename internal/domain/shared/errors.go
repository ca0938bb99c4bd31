package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Registration and stock errors
var (
	ErrRegistrationClosed  = NewDomainError("REGISTRATION_CLOSED", "Registration is not open for this event")
	ErrDeadlinePassed      = NewDomainError("DEADLINE_PASSED", "The registration deadline for this event has passed")
	ErrEventFull           = NewDomainError("EVENT_FULL", "Event has reached its registration limit")
	ErrAlreadyRegistered   = NewDomainError("ALREADY_REGISTERED", "Participant already has an active registration for this event")
	ErrNotEligible         = NewDomainError("NOT_ELIGIBLE", "Participant does not meet the eligibility criteria for this event")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrPurchaseLimit       = NewDomainError("PURCHASE_LIMIT_EXCEEDED", "Purchase limit for this item has been reached")
	ErrAlreadyAttended     = NewDomainError("DUPLICATE_SCAN", "Attendance has already been marked for this ticket")
	ErrAlreadyProcessed    = NewDomainError("ALREADY_PROCESSED", "Registration has already been approved or rejected")
	ErrFormLocked          = NewDomainError("FORM_LOCKED", "Registration form is locked and cannot be modified")
	ErrPaymentNotCompleted = NewDomainError("PAYMENT_NOT_COMPLETED", "Payment has not been completed for this registration")
)
