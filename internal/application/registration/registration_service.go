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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RegistrationService handles participant-facing registration operations:
// immediate registration for normal events, merchandise orders awaiting
// organizer approval, and cancellation.
type RegistrationService struct {
	txScope          TransactionScope
	registrationRepo registration.Repository
	eventRepo        event.EventRepository
	userRepo         identity.UserRepository
	qrRenderer       registration.QRCodeRenderer
	notifier         Notifier
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	txScope TransactionScope,
	registrationRepo registration.Repository,
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	qrRenderer registration.QRCodeRenderer,
	notifier Notifier,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
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
func (s *RegistrationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register registers a participant for a normal event. The slot reservation
// and the registration row commit in one transaction; the ticket email goes
// out afterwards and never reverses a committed registration.
func (s *RegistrationService) Register(ctx context.Context, participantID uuid.UUID, req RegisterRequest) (*RegistrationResponse, error) {
	user, ev, err := s.loadParticipantAndEvent(ctx, participantID, req.EventID)
	if err != nil {
		return nil, err
	}
	if ev.Type != event.EventTypeNormal {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "This event sells merchandise; place an order instead")
	}
	if err := s.checkAdmission(user, ev); err != nil {
		return nil, err
	}
	if err := ev.CustomForm.ValidateResponses(req.FormResponses); err != nil {
		return nil, err
	}

	var reg *registration.Registration
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Lock the form before the ledger touches the counters so a
		// stale aggregate save cannot overwrite the reservation.
		if !ev.FormLocked && len(ev.CustomForm) > 0 {
			ev.LockForm()
			if err := repos.Events().Update(ctx, ev); err != nil {
				return err
			}
		}

		if err := repos.Ledger().ReserveSlot(ctx, ev.ID, ev.RegistrationFee); err != nil {
			return err
		}

		r, err := registration.NewRegistration(ev.ID, user.ID, registration.NewTicketID(), req.FormResponses, ev.RegistrationFee)
		if err != nil {
			return err
		}
		s.attachQR(r, registration.NewTicketPayload(r, ev.Name, user.FullName()))

		if err := s.createWithTicketRetry(ctx, repos.Registrations(), r); err != nil {
			return err
		}
		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, reg)
	s.sendTicketEmail(ctx, reg, TicketEmail{
		To:              user.Email,
		ParticipantName: user.FullName(),
		EventName:       ev.Name,
		TicketID:        reg.TicketID,
		QRCodePNG:       reg.QRCode,
	})

	return ToRegistrationResponse(reg), nil
}

// Purchase places a merchandise order. The order is written pending organizer
// approval; variant stock stays untouched until approval commits the sale.
func (s *RegistrationService) Purchase(ctx context.Context, participantID uuid.UUID, req PurchaseRequest) (*RegistrationResponse, error) {
	user, ev, err := s.loadParticipantAndEvent(ctx, participantID, req.EventID)
	if err != nil {
		return nil, err
	}
	if ev.Type != event.EventTypeMerchandise {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "This event does not sell merchandise")
	}
	if err := s.checkAdmission(user, ev); err != nil {
		return nil, err
	}
	if ev.FindVariant(req.Size, req.Color) == nil {
		return nil, shared.NewDomainError("UNKNOWN_VARIANT", "No such size and color combination for this item")
	}

	if ev.PurchaseLimitPerAttendee > 0 {
		ordered, err := s.registrationRepo.SumQuantityByParticipant(ctx, ev.ID, user.ID)
		if err != nil {
			return nil, err
		}
		if ordered+req.Quantity > ev.PurchaseLimitPerAttendee {
			return nil, shared.ErrPurchaseLimit
		}
	}

	total := ev.RegistrationFee.Mul(decimal.NewFromInt(int64(req.Quantity)))
	reg, err := registration.NewMerchandiseOrder(ev.ID, user.ID, registration.NewTicketID(), req.Size, req.Color, req.Quantity, total, req.PaymentProof)
	if err != nil {
		return nil, err
	}

	if err := s.createWithTicketRetry(ctx, s.registrationRepo, reg); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, reg)

	return ToRegistrationResponse(reg), nil
}

// Cancel cancels the participant's registration before the event starts.
// Registrations holding a slot release it and reverse the amount originally
// charged; variant stock is never restored.
func (s *RegistrationService) Cancel(ctx context.Context, participantID, registrationID uuid.UUID) (*RegistrationResponse, error) {
	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.ParticipantID != participantID {
		return nil, shared.ErrForbidden
	}
	ev, err := s.eventRepo.FindByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}

	// A completed payment means the registration holds a slot and revenue:
	// every normal registration, and merchandise once approved.
	heldSlot := reg.PaymentStatus == registration.PaymentStatusCompleted
	charged := reg.PaymentAmount

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := reg.Cancel(ev.StartDate); err != nil {
			return err
		}
		if err := repos.Registrations().SaveWithLock(ctx, reg); err != nil {
			return err
		}
		if heldSlot {
			return repos.Ledger().ReleaseSlot(ctx, ev.ID, charged)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, reg)

	return ToRegistrationResponse(reg), nil
}

// GetMyRegistrations returns all of the participant's registrations, newest first
func (s *RegistrationService) GetMyRegistrations(ctx context.Context, participantID uuid.UUID) ([]*RegistrationResponse, error) {
	regs, err := s.registrationRepo.FindByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	responses := make([]*RegistrationResponse, len(regs))
	for i, r := range regs {
		responses[i] = ToRegistrationResponse(r)
	}
	return responses, nil
}

// GetTicket returns one registration for its owner
func (s *RegistrationService) GetTicket(ctx context.Context, participantID, registrationID uuid.UUID) (*RegistrationResponse, error) {
	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.ParticipantID != participantID {
		return nil, shared.ErrForbidden
	}
	return ToRegistrationResponse(reg), nil
}

func (s *RegistrationService) loadParticipantAndEvent(ctx context.Context, participantID, eventID uuid.UUID) (*identity.User, *event.Event, error) {
	user, err := s.userRepo.FindByID(ctx, participantID)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != identity.RoleParticipant {
		return nil, nil, shared.ErrForbidden
	}
	ev, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return user, ev, nil
}

func (s *RegistrationService) checkAdmission(user *identity.User, ev *event.Event) error {
	now := time.Now()
	if ev.Status != event.EventStatusPublished {
		return shared.ErrRegistrationClosed
	}
	if ev.DeadlinePassed(now) {
		return shared.ErrDeadlinePassed
	}
	if !user.MatchesEligibility(string(ev.Eligibility)) {
		return shared.ErrNotEligible
	}
	return nil
}

// createWithTicketRetry inserts the registration, retrying exactly once with
// a fresh ticket when the ticket ID collides. An active-registration
// violation is returned as-is.
func (s *RegistrationService) createWithTicketRetry(ctx context.Context, repo registration.Repository, r *registration.Registration) error {
	err := repo.Create(ctx, r)
	if !errors.Is(err, shared.ErrAlreadyExists) {
		return err
	}

	s.logger.Warn("Ticket ID collision, retrying with a fresh ticket",
		zap.String("ticket_id", r.TicketID),
		zap.String("event_id", r.EventID.String()))
	r.TicketID = registration.NewTicketID()
	return repo.Create(ctx, r)
}

// attachQR renders and attaches the entry pass. Rendering failures are
// logged and leave the registration without a code.
func (s *RegistrationService) attachQR(r *registration.Registration, payload registration.QRPayload) {
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

// sendTicketEmail delivers the ticket and records the delivery. Failures are
// logged; the registration stands either way.
func (s *RegistrationService) sendTicketEmail(ctx context.Context, r *registration.Registration, email TicketEmail) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendTicket(ctx, email); err != nil {
		s.logger.Warn("Ticket email delivery failed",
			zap.String("ticket_id", r.TicketID),
			zap.String("to", email.To),
			zap.Error(err))
		return
	}
	r.MarkEmailSent()
	if err := s.registrationRepo.Update(ctx, r); err != nil {
		s.logger.Warn("Failed to record ticket email delivery", zap.Error(err))
	}
}

// publishDomainEvents publishes all domain events raised by the registration
func (s *RegistrationService) publishDomainEvents(ctx context.Context, r *registration.Registration) {
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
