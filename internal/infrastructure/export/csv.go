package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ParticipantRow is one line of an event's participant export
type ParticipantRow struct {
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
}

// AttendanceRow is one line of an event's attendance export
type AttendanceRow struct {
	TicketID   string
	Name       string
	Email      string
	Attended   bool
	AttendedAt *time.Time
	Channel    string // scan or manual, empty when not attended
}

var participantHeader = []string{
	"Ticket ID", "First Name", "Last Name", "Email", "Contact", "College",
	"Registration Date", "Payment Status", "Amount", "Attended",
}

var attendanceHeader = []string{
	"Ticket ID", "Name", "Email", "Attended", "Attendance Time", "Channel",
}

// WriteParticipants writes the participant export
func WriteParticipants(w io.Writer, rows []ParticipantRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(participantHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.TicketID,
			r.FirstName,
			r.LastName,
			r.Email,
			r.Contact,
			r.College,
			r.RegisteredAt.Format("2006-01-02"),
			r.PaymentStatus,
			r.Amount.StringFixed(2),
			yesNo(r.Attended),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAttendance writes the attendance export
func WriteAttendance(w io.Writer, rows []AttendanceRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attendanceHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		attendedAt := ""
		if r.AttendedAt != nil {
			attendedAt = r.AttendedAt.Format(time.RFC3339)
		}
		record := []string{
			r.TicketID,
			r.Name,
			r.Email,
			yesNo(r.Attended),
			attendedAt,
			r.Channel,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
