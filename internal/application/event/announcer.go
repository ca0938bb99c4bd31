package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Announcement carries the fields posted to an organizer's Discord channel
// when an event goes live.
type Announcement struct {
	Name              string
	Description       string
	Type              string
	Eligibility       string
	Tags              []string
	RegistrationFee   decimal.Decimal
	RegistrationLimit int
	StartDate         time.Time
	Deadline          time.Time
}

// Announcer posts publish announcements to an external channel. Failures
// are logged by the caller and never affect the publish itself.
type Announcer interface {
	Announce(ctx context.Context, webhookURL string, a Announcement) error
}
