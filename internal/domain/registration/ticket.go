package registration

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ticketPrefix       = "FEL"
	ticketRandomLength = 6
	base36Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewTicketID generates a human-readable ticket identifier of the form
// FEL-<base36 millisecond timestamp>-<6 random base36 characters>.
// The timestamp component keeps identifiers roughly sortable; the random
// suffix makes same-millisecond collisions vanishingly unlikely. The
// database unique index on ticket_id is the final guard, and callers retry
// once on a unique violation.
func NewTicketID() string {
	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, ticketRandomLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for ticket issuance;
		// fall back to a uuid-derived suffix rather than panic
		return fmt.Sprintf("%s-%s-%s", ticketPrefix, timestamp,
			strings.ToUpper(uuid.NewString()[:ticketRandomLength]))
	}
	random := make([]byte, ticketRandomLength)
	for i, b := range buf {
		random[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}

	return fmt.Sprintf("%s-%s-%s", ticketPrefix, timestamp, string(random))
}

// QRPayload is the JSON document encoded into an entry pass QR code
type QRPayload struct {
	TicketID        string    `json:"ticketId"`
	EventID         uuid.UUID `json:"eventId"`
	ParticipantID   uuid.UUID `json:"participantId"`
	EventName       string    `json:"eventName"`
	ParticipantName string    `json:"participantName"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewTicketPayload builds the QR payload for a normal registration
func NewTicketPayload(r *Registration, eventName, participantName string) QRPayload {
	return QRPayload{
		TicketID:        r.TicketID,
		EventID:         r.EventID,
		ParticipantID:   r.ParticipantID,
		EventName:       eventName,
		ParticipantName: participantName,
		Timestamp:       time.Now(),
	}
}

// NewMerchandisePayload builds the QR payload for an approved merchandise
// order, describing the purchased item instead of a bare event name
func NewMerchandisePayload(r *Registration, itemName, participantName string) QRPayload {
	descriptor := fmt.Sprintf("%s (%s, %s) x%d", itemName, r.VariantSize, r.VariantColor, r.Quantity)
	return QRPayload{
		TicketID:        r.TicketID,
		EventID:         r.EventID,
		ParticipantID:   r.ParticipantID,
		EventName:       descriptor,
		ParticipantName: participantName,
		Timestamp:       time.Now(),
	}
}

// QRCodeRenderer renders a payload into a displayable image. A rendering
// failure is never fatal to the surrounding workflow; callers log it and
// continue without a code.
type QRCodeRenderer interface {
	Render(payload QRPayload) (string, error)
}
