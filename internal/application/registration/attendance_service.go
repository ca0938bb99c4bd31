package registration

import (
	"context"
	"errors"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttendanceService marks attendance at the venue. A ticket admits exactly
// once: repeat scans are rejected as conflicts, and the event's attendance
// total moves only on the first successful marking.
type AttendanceService struct {
	txScope          TransactionScope
	registrationRepo registration.Repository
	eventRepo        event.EventRepository
	userRepo         identity.UserRepository
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	txScope TransactionScope,
	registrationRepo registration.Repository,
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		txScope:          txScope,
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AttendanceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ScanTicket marks attendance from a QR scan. A second scan of the same
// ticket is rejected with a conflict carrying the original marking time.
func (s *AttendanceService) ScanTicket(ctx context.Context, scannerID uuid.UUID, req ScanRequest) (*ScanResult, error) {
	reg, err := s.registrationRepo.FindByTicketID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if reg.EventID != req.EventID {
		return nil, shared.NewDomainError("WRONG_EVENT", "Ticket belongs to a different event")
	}
	return s.mark(ctx, scannerID, reg, registration.AttendanceMethodScan, "")
}

// MarkManually marks attendance without a scan, recording the override reason
func (s *AttendanceService) MarkManually(ctx context.Context, scannerID uuid.UUID, req ManualAttendanceRequest) (*ScanResult, error) {
	reg, err := s.registrationRepo.FindByID(ctx, req.RegistrationID)
	if err != nil {
		return nil, err
	}
	return s.mark(ctx, scannerID, reg, registration.AttendanceMethodManual, req.Reason)
}

func (s *AttendanceService) mark(ctx context.Context, scannerID uuid.UUID, reg *registration.Registration, method registration.AttendanceMethod, notes string) (*ScanResult, error) {
	ev, err := s.eventRepo.FindByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEventAccess(ctx, scannerID, ev); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := reg.MarkAttendance(scannerID, method, notes); err != nil {
			return err
		}
		if err := repos.Registrations().SaveWithLock(ctx, reg); err != nil {
			return err
		}
		return repos.Ledger().IncrementAttendance(ctx, ev.ID)
	})
	if errors.Is(err, shared.ErrAlreadyAttended) {
		msg := "Attendance has already been marked for this ticket"
		if reg.AttendanceMarkedAt != nil {
			msg += " at " + reg.AttendanceMarkedAt.UTC().Format(time.RFC3339)
		}
		return nil, shared.NewDomainError("DUPLICATE_SCAN", msg)
	}
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, reg)

	return &ScanResult{Registration: ToRegistrationResponse(reg)}, nil
}

// VerifyTicket looks a ticket up for the gate staff without marking anything
func (s *AttendanceService) VerifyTicket(ctx context.Context, requesterID uuid.UUID, ticketID string) (*RegistrationResponse, error) {
	reg, err := s.registrationRepo.FindByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ev, err := s.eventRepo.FindByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEventAccess(ctx, requesterID, ev); err != nil {
		return nil, err
	}
	return ToRegistrationResponse(reg), nil
}

// ListAttendance returns an event's registrations filtered by attendance state
func (s *AttendanceService) ListAttendance(ctx context.Context, requesterID, eventID uuid.UUID, filter registration.Filter) ([]*RegistrationResponse, int64, error) {
	ev, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.checkEventAccess(ctx, requesterID, ev); err != nil {
		return nil, 0, err
	}

	regs, total, err := s.registrationRepo.FindByEvent(ctx, eventID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]*RegistrationResponse, len(regs))
	for i, r := range regs {
		responses[i] = ToRegistrationResponse(r)
	}
	return responses, total, nil
}

// Stats returns the event's attendance summary
func (s *AttendanceService) Stats(ctx context.Context, requesterID, eventID uuid.UUID) (*AttendanceStats, error) {
	ev, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEventAccess(ctx, requesterID, ev); err != nil {
		return nil, err
	}

	active, err := s.registrationRepo.CountActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	attended, err := s.registrationRepo.CountAttendedByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &AttendanceStats{
		EventID:       eventID,
		TotalActive:   active,
		TotalAttended: attended,
	}
	if active > 0 {
		stats.AttendanceRate = float64(attended) / float64(active)
	}
	return stats, nil
}

// checkEventAccess allows the owning organizer and admins
func (s *AttendanceService) checkEventAccess(ctx context.Context, requesterID uuid.UUID, ev *event.Event) error {
	if ev.OrganizerID == requesterID {
		return nil
	}
	requester, err := s.userRepo.FindByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if requester.Role != identity.RoleAdmin {
		return shared.ErrForbidden
	}
	return nil
}

func (s *AttendanceService) publishDomainEvents(ctx context.Context, r *registration.Registration) {
	if s.eventPublisher == nil {
		return
	}
	events := r.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	r.ClearDomainEvents()
}
