package registration

import "context"

// TicketEmail carries everything the mailer needs to deliver a ticket or an
// approved merchandise order to a participant
type TicketEmail struct {
	To              string
	ParticipantName string
	EventName       string
	TicketID        string
	QRCodePNG       string // base64 PNG, may be empty when rendering failed
	ItemDescription string // set for merchandise orders
}

// RejectionEmail informs a participant that their merchandise order was turned down
type RejectionEmail struct {
	To              string
	ParticipantName string
	EventName       string
	TicketID        string
	Reason          string
}

// Notifier delivers registration outcomes to participants. Delivery is
// best-effort: failures are logged by callers and never fail or reverse a
// committed registration.
type Notifier interface {
	SendTicket(ctx context.Context, email TicketEmail) error
	SendRejection(ctx context.Context, email RejectionEmail) error
}
