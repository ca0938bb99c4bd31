package identity

import "context"

// CredentialsEmail carries generated login credentials for an organizer,
// either from initial provisioning or an approved password reset.
type CredentialsEmail struct {
	To            string
	OrganizerName string
	Email         string
	Password      string
	Reset         bool // true when this is a password reset, false for a new account
}

// Notifier sends credential emails. Implemented by the SMTP mailer; delivery
// failures are logged and never fail the admin operation.
type Notifier interface {
	SendCredentials(ctx context.Context, email CredentialsEmail) error
}
