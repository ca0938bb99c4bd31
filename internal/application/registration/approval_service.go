package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApprovalService handles organizer decisions on pending merchandise orders.
// Approval is the only point where variant stock moves: the conditional
// decrement and the order update commit together, and an order that would
// oversell fails with INSUFFICIENT_STOCK and stays pending.
type ApprovalService struct {
	txScope          TransactionScope
	registrationRepo registration.Repository
	eventRepo        event.EventRepository
	userRepo         identity.UserRepository
	qrRenderer       registration.QRCodeRenderer
	notifier         Notifier
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	txScope TransactionScope,
	registrationRepo registration.Repository,
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	qrRenderer registration.QRCodeRenderer,
	notifier Notifier,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		txScope:          txScope,
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		qrRenderer:       qrRenderer,
		notifier:         notifier,
		logger:           logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ApprovalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Approve approves a pending merchandise order: stock is decremented
// conditionally, the payment completes, and the entry pass is issued. The
// confirmation email goes out after commit and never reverses the sale.
func (s *ApprovalService) Approve(ctx context.Context, approverID, registrationID uuid.UUID) (*RegistrationResponse, error) {
	reg, ev, err := s.loadOrderForApprover(ctx, approverID, registrationID)
	if err != nil {
		return nil, err
	}
	participant, err := s.userRepo.FindByID(ctx, reg.ParticipantID)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := reg.Approve(); err != nil {
			return err
		}

		err := repos.Ledger().CommitStockSale(ctx, ev.ID, reg.VariantSize, reg.VariantColor, reg.Quantity, reg.TotalPrice)
		if errors.Is(err, shared.ErrNotFound) {
			// The variant was removed after the order was placed. The
			// sale still counts; only the stock movement is skipped.
			s.logger.Warn("Approving order for a variant that no longer exists",
				zap.String("ticket_id", reg.TicketID),
				zap.String("size", reg.VariantSize),
				zap.String("color", reg.VariantColor))
			err = repos.Ledger().ReserveSlot(ctx, ev.ID, reg.TotalPrice)
		}
		if err != nil {
			return err
		}

		s.attachQR(reg, registration.NewMerchandisePayload(reg, ev.ItemName, participant.FullName()))

		return repos.Registrations().SaveWithLock(ctx, reg)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, reg)
	s.sendEmail(ctx, reg, func(ctx context.Context) error {
		return s.notifier.SendTicket(ctx, TicketEmail{
			To:              participant.Email,
			ParticipantName: participant.FullName(),
			EventName:       ev.Name,
			TicketID:        reg.TicketID,
			QRCodePNG:       reg.QRCode,
			ItemDescription: fmt.Sprintf("%s (%s, %s) x%d", ev.ItemName, reg.VariantSize, reg.VariantColor, reg.Quantity),
		})
	})

	return ToRegistrationResponse(reg), nil
}

// Reject turns down a pending merchandise order with a reason. Stock is
// never touched; the decision is terminal.
func (s *ApprovalService) Reject(ctx context.Context, approverID, registrationID uuid.UUID, reason string) (*RegistrationResponse, error) {
	reg, ev, err := s.loadOrderForApprover(ctx, approverID, registrationID)
	if err != nil {
		return nil, err
	}
	participant, err := s.userRepo.FindByID(ctx, reg.ParticipantID)
	if err != nil {
		return nil, err
	}

	if err := reg.Reject(reason); err != nil {
		return nil, err
	}
	if err := s.registrationRepo.SaveWithLock(ctx, reg); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, reg)
	s.sendEmail(ctx, reg, func(ctx context.Context) error {
		return s.notifier.SendRejection(ctx, RejectionEmail{
			To:              participant.Email,
			ParticipantName: participant.FullName(),
			EventName:       ev.Name,
			TicketID:        reg.TicketID,
			Reason:          reason,
		})
	})

	return ToRegistrationResponse(reg), nil
}

// ListOrders returns an event's registrations for its organizer, filtered
// by type, status, or approval state
func (s *ApprovalService) ListOrders(ctx context.Context, requesterID, eventID uuid.UUID, filter registration.Filter) ([]*RegistrationResponse, int64, error) {
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

func (s *ApprovalService) loadOrderForApprover(ctx context.Context, approverID, registrationID uuid.UUID) (*registration.Registration, *event.Event, error) {
	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	ev, err := s.eventRepo.FindByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkEventAccess(ctx, approverID, ev); err != nil {
		return nil, nil, err
	}
	return reg, ev, nil
}

// checkEventAccess allows the owning organizer and admins
func (s *ApprovalService) checkEventAccess(ctx context.Context, requesterID uuid.UUID, ev *event.Event) error {
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

func (s *ApprovalService) attachQR(r *registration.Registration, payload registration.QRPayload) {
	if s.qrRenderer == nil {
		return
	}
	png, err := s.qrRenderer.Render(payload)
	if err != nil {
		s.logger.Warn("QR code rendering failed",
			zap.String("ticket_id", r.TicketID),
			zap.Error(err))
		return
	}
	if err := r.AttachQRCode(png); err != nil {
		s.logger.Warn("Could not attach QR code", zap.Error(err))
	}
}

func (s *ApprovalService) sendEmail(ctx context.Context, r *registration.Registration, send func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}
	if err := send(ctx); err != nil {
		s.logger.Warn("Order decision email delivery failed",
			zap.String("ticket_id", r.TicketID),
			zap.Error(err))
		return
	}
	r.MarkEmailSent()
	if err := s.registrationRepo.Update(ctx, r); err != nil {
		s.logger.Warn("Failed to record email delivery", zap.Error(err))
	}
}

// publishDomainEvents publishes all domain events raised by the registration
func (s *ApprovalService) publishDomainEvents(ctx context.Context, r *registration.Registration) {
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
