package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command, keeping
// concurrent commands isolated from each other.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary. Repositories
// obtained from it operate inside the transaction opened by Begin.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction. Safe to defer after a
	// successful Commit.
	Rollback(ctx context.Context) error

	// OrderRepository returns an OrderRepository bound to the transaction.
	OrderRepository() OrderRepository

	// CourierRepository returns a CourierRepository bound to the transaction.
	CourierRepository() CourierRepository

	// BatchRepository returns a BatchRepository bound to the transaction.
	BatchRepository() BatchRepository
}
