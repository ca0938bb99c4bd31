package notify

import (
	"context"
	"fmt"
	"html"

	appidentity "github.com/felicity/backend/internal/application/identity"
	appregistration "github.com/felicity/backend/internal/application/registration"
	"github.com/felicity/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers tickets, rejections and account credentials over SMTP.
// When mail is disabled in config every send is a logged no-op, which keeps
// development environments working without an SMTP server.
type Mailer struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

var _ appregistration.Notifier = (*Mailer)(nil)
var _ appidentity.Notifier = (*Mailer)(nil)

// NewMailer creates a mailer from SMTP config
func NewMailer(cfg config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// SendTicket emails an entry pass, QR code inline when one was rendered
func (m *Mailer) SendTicket(ctx context.Context, email appregistration.TicketEmail) error {
	subject := fmt.Sprintf("Your ticket for %s", email.EventName)
	what := email.EventName
	if email.ItemDescription != "" {
		subject = fmt.Sprintf("Your order for %s is confirmed", email.EventName)
		what = email.ItemDescription
	}

	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your registration for <strong>%s</strong> is confirmed.</p>
<p>Ticket ID: <strong>%s</strong></p>`,
		html.EscapeString(email.ParticipantName),
		html.EscapeString(what),
		html.EscapeString(email.TicketID))
	if email.QRCodePNG != "" {
		body += fmt.Sprintf(`<p>Show this code at the venue:</p><img src="data:image/png;base64,%s" alt="ticket QR"/>`, email.QRCodePNG)
	}
	body += "<p>See you there!</p>"

	return m.send(ctx, email.To, subject, body)
}

// SendRejection emails a merchandise order rejection with the organizer's reason
func (m *Mailer) SendRejection(ctx context.Context, email appregistration.RejectionEmail) error {
	subject := fmt.Sprintf("Update on your order for %s", email.EventName)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your order <strong>%s</strong> for <strong>%s</strong> could not be approved.</p>
<p>Reason: %s</p>
<p>If you believe this is a mistake, reply to this email or reach out to the organizer.</p>`,
		html.EscapeString(email.ParticipantName),
		html.EscapeString(email.TicketID),
		html.EscapeString(email.EventName),
		html.EscapeString(email.Reason))

	return m.send(ctx, email.To, subject, body)
}

// SendCredentials emails freshly issued or reset organizer credentials
func (m *Mailer) SendCredentials(ctx context.Context, email appidentity.CredentialsEmail) error {
	subject := "Your organizer account"
	intro := "An organizer account has been created for you."
	if email.Reset {
		subject = "Your password has been reset"
		intro = "Your password reset request was approved."
	}

	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>%s</p>
<p>Email: <strong>%s</strong><br/>Password: <strong>%s</strong></p>
<p>Please log in and change this password.</p>`,
		html.EscapeString(email.OrganizerName),
		intro,
		html.EscapeString(email.Email),
		html.EscapeString(email.Password))

	return m.send(ctx, email.To, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if !m.cfg.Enabled {
		m.logger.Debug("mail disabled, skipping send",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
