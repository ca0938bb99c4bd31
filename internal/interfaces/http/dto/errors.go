package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors carry their own codes
// (see internal/domain/shared) and are mapped to statuses below.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_FAILED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	// Transport errors
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Authentication
	"INVALID_CREDENTIALS":  http.StatusUnauthorized,
	"TOKEN_EXPIRED":        http.StatusUnauthorized,
	"TOKEN_INVALID":        http.StatusUnauthorized,
	"TOKEN_REVOKED":        http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":    http.StatusUnauthorized,
	"ACCOUNT_NOT_APPROVED": http.StatusForbidden,

	// Duplicates and write conflicts -> 409
	"ALREADY_EXISTS":        http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"EMAIL_TAKEN":           http.StatusConflict,
	"ALREADY_REGISTERED":    http.StatusConflict,
	"ALREADY_SUBMITTED":     http.StatusConflict,
	"ALREADY_PROCESSED":     http.StatusConflict,
	"ALREADY_FOLLOWING":     http.StatusConflict,
	"DUPLICATE_SCAN":        http.StatusConflict,
	"DUPLICATE_VARIANT":     http.StatusConflict,
	"RESET_ALREADY_PENDING": http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"REGISTRATION_CLOSED":       http.StatusUnprocessableEntity,
	"DEADLINE_PASSED":           http.StatusUnprocessableEntity,
	"EVENT_FULL":                http.StatusUnprocessableEntity,
	"NOT_ELIGIBLE":              http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":        http.StatusUnprocessableEntity,
	"PURCHASE_LIMIT_EXCEEDED":   http.StatusUnprocessableEntity,
	"UNKNOWN_VARIANT":           http.StatusUnprocessableEntity,
	"FORM_LOCKED":               http.StatusUnprocessableEntity,
	"PAYMENT_NOT_COMPLETED":     http.StatusUnprocessableEntity,
	"NOT_REGISTERED":            http.StatusUnprocessableEntity,
	"NOT_FOLLOWING":             http.StatusUnprocessableEntity,
	"FIELD_NOT_EDITABLE":        http.StatusUnprocessableEntity,
	"INVALID_STATUS_TRANSITION": http.StatusUnprocessableEntity,
	"WRONG_EVENT":               http.StatusUnprocessableEntity,

	// Internal failures surfaced as domain errors
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,
	"TOKEN_ERROR":         http.StatusInternalServerError,
	"DB_ERROR":            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain or transport error code.
// Unmapped INVALID_* / MISSING_* codes are treated as bad input; any other
// unmapped code is a business rule violation.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "MISSING_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
