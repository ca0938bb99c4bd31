package registration

import (
	"context"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/registration"
)

// TransactionScope provides transactional access to the registration
// workflow's repositories. When a function is executed within a transaction
// scope, all repository operations will be part of the same database
// transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories the
// registration workflow writes through within a transaction. All
// repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - Registrations: repository for the Registration aggregate root.
//   - Events: used inside a transaction only for reads and for locking a
//     custom form on first registration.
//   - Ledger: the single writer for admission counters and variant stock.
//     Slot reservations and stock decrements go through it so the counter
//     change and the registration row commit together.
type TransactionalRepositories interface {
	// Registrations returns the registration repository scoped to the current transaction
	Registrations() registration.Repository
	// Events returns the event repository scoped to the current transaction
	Events() event.EventRepository
	// Ledger returns the capacity ledger scoped to the current transaction
	Ledger() event.CapacityLedger
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	registrations registration.Repository
	events        event.EventRepository
	ledger        event.CapacityLedger
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	registrations registration.Repository,
	events event.EventRepository,
	ledger event.CapacityLedger,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		registrations: registrations,
		events:        events,
		ledger:        ledger,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Registrations returns the registration repository.
func (s *NoOpTransactionScope) Registrations() registration.Repository {
	return s.registrations
}

// Events returns the event repository.
func (s *NoOpTransactionScope) Events() event.EventRepository {
	return s.events
}

// Ledger returns the capacity ledger.
func (s *NoOpTransactionScope) Ledger() event.CapacityLedger {
	return s.ledger
}
