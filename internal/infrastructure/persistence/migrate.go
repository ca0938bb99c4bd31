package persistence

import (
	"fmt"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/feedback"
	"github.com/felicity/backend/internal/domain/forum"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all aggregates and installs the
// indexes GORM cannot express in tags.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&identity.User{},
		&identity.PasswordResetRequest{},
		&event.Event{},
		&event.Variant{},
		&registration.Registration{},
		&forum.Message{},
		&feedback.Feedback{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// One active normal registration per participant per event. Partial so
	// cancelled and rejected rows never block a re-registration.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_registration
		ON registrations (event_id, participant_id)
		WHERE status = 'registered' AND type = 'normal'
	`).Error; err != nil {
		return fmt.Errorf("create active registration index: %w", err)
	}

	return nil
}
