package registration

import (
	"context"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// exportPageSize matches the repository's per-page cap
const exportPageSize = 500

// ParticipantExportRow is one participant line of an event export, joined
// with the account fields the CSV needs
type ParticipantExportRow struct {
	TicketID      string
	FirstName     string
	LastName      string
	Email         string
	Contact       string
	College       string
	RegisteredAt  time.Time
	PaymentStatus string
	Amount        decimal.Decimal
	Attended      bool
	AttendedAt    *time.Time
	Channel       string
}

// ExportService assembles event exports for organizers
type ExportService struct {
	registrationRepo registration.Repository
	eventRepo        event.EventRepository
	userRepo         identity.UserRepository
	logger           *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(
	registrationRepo registration.Repository,
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// ParticipantRows collects every active registration for the event with the
// participant account fields joined in. Only the owning organizer and admins
// may export.
func (s *ExportService) ParticipantRows(ctx context.Context, requesterID, eventID uuid.UUID) ([]ParticipantExportRow, string, error) {
	ev, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	if err := s.checkEventAccess(ctx, requesterID, ev); err != nil {
		return nil, "", err
	}

	regs, err := s.collectRegistrations(ctx, eventID)
	if err != nil {
		return nil, "", err
	}

	rows := make([]ParticipantExportRow, 0, len(regs))
	for _, r := range regs {
		row := ParticipantExportRow{
			TicketID:      r.TicketID,
			RegisteredAt:  r.CreatedAt,
			PaymentStatus: string(r.PaymentStatus),
			Amount:        r.PaymentAmount,
			Attended:      r.Attended,
			AttendedAt:    r.AttendanceMarkedAt,
			Channel:       attendanceChannel(r),
		}
		participant, err := s.userRepo.FindByID(ctx, r.ParticipantID)
		if err != nil {
			// Deleted accounts still appear in the export by ticket ID
			s.logger.Warn("Participant lookup failed during export",
				zap.String("registration_id", r.ID.String()),
				zap.Error(err))
		} else {
			row.FirstName = participant.FirstName
			row.LastName = participant.LastName
			row.Email = participant.Email
			row.Contact = participant.ContactNumber
			row.College = participant.College
		}
		rows = append(rows, row)
	}

	return rows, ev.Name, nil
}

// collectRegistrations pages through the event's registrations
func (s *ExportService) collectRegistrations(ctx context.Context, eventID uuid.UUID) ([]*registration.Registration, error) {
	var all []*registration.Registration
	filter := registration.NewFilter()
	filter.PageSize = exportPageSize

	for {
		page, total, err := s.registrationRepo.FindByEvent(ctx, eventID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(all) >= int(total) || len(page) == 0 {
			return all, nil
		}
		filter.Page++
	}
}

// attendanceChannel reports how attendance was marked, empty when it wasn't
func attendanceChannel(r *registration.Registration) string {
	if !r.Attended {
		return ""
	}
	if len(r.AttendanceLog) > 0 {
		return string(r.AttendanceLog[0].Method)
	}
	return string(registration.AttendanceMethodScan)
}

// checkEventAccess allows the owning organizer and admins
func (s *ExportService) checkEventAccess(ctx context.Context, requesterID uuid.UUID, ev *event.Event) error {
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
