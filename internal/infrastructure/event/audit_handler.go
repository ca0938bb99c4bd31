package event

import (
	"context"

	domainevent "github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the structured log so the
// registration and approval trail can be reconstructed from log storage
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		identity.EventTypeUserCreated,
		identity.EventTypeUserPasswordChanged,
		identity.EventTypeOrganizerApproved,
		domainevent.EventTypeEventPublished,
		domainevent.EventTypeEventStatusChanged,
		registration.EventTypeRegistrationCreated,
		registration.EventTypeRegistrationCancelled,
		registration.EventTypeOrderApproved,
		registration.EventTypeOrderRejected,
		registration.EventTypeAttendanceMarked,
	}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
