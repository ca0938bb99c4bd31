package notify

import (
	"context"
	"testing"

	appidentity "github.com/felicity/backend/internal/application/identity"
	appregistration "github.com/felicity/backend/internal/application/registration"
	"github.com/felicity/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMailer_DisabledSkipsDelivery(t *testing.T) {
	mailer := NewMailer(config.MailConfig{Enabled: false}, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, mailer.SendTicket(ctx, appregistration.TicketEmail{
		To:              "asha.rao@iiit.ac.in",
		ParticipantName: "Asha",
		EventName:       "Hackathon",
		TicketID:        "FEL-ABC123-XYZ789",
	}))
	assert.NoError(t, mailer.SendRejection(ctx, appregistration.RejectionEmail{
		To:     "asha.rao@iiit.ac.in",
		Reason: "payment proof unreadable",
	}))
	assert.NoError(t, mailer.SendCredentials(ctx, appidentity.CredentialsEmail{
		To:            "clubs@felicity.iiit.ac.in",
		OrganizerName: "Literary Club",
		Email:         "clubs@felicity.iiit.ac.in",
		Password:      "t3mpPassw0rd",
	}))
}

func TestMailer_CancelledContext(t *testing.T) {
	mailer := NewMailer(config.MailConfig{Enabled: true, Host: "localhost", Port: 2525}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mailer.SendTicket(ctx, appregistration.TicketEmail{To: "a@b.c"})

	assert.ErrorIs(t, err, context.Canceled)
}
