package persistence

import (
	"context"

	appreg "github.com/felicity/backend/internal/application/registration"
	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/registration"
	"gorm.io/gorm"
)

// GormTransactionScope implements the registration workflow's transaction
// scope using GORM transactions. Everything touched through the returned
// repositories shares one database transaction, so a reservation and the
// registration row it admits commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appreg.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Registrations returns the registration repository scoped to the transaction
func (r *gormTransactionalRepositories) Registrations() registration.Repository {
	return NewGormRegistrationRepository(r.tx)
}

// Events returns the event repository scoped to the transaction
func (r *gormTransactionalRepositories) Events() event.EventRepository {
	return NewGormEventRepository(r.tx)
}

// Ledger returns the capacity ledger scoped to the transaction
func (r *gormTransactionalRepositories) Ledger() event.CapacityLedger {
	return NewGormCapacityLedger(r.tx)
}

var _ appreg.TransactionScope = (*GormTransactionScope)(nil)
var _ appreg.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
