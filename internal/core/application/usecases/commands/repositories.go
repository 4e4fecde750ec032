// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: validation,
// transaction management, persistence, then best-effort notifications.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command
// handlers. These abstractions ensure data consistency across aggregate
// boundaries.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a
	// transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// CourierRepoFactory provides access to the courier repository within a
	// transaction.
	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// BatchRepoFactory provides access to the batch repository within a
	// transaction.
	BatchRepoFactory interface {
		BatchRepository() ports.BatchRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CourierUoW manages transactions for courier-only operations.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	// CourierUoWFactory creates new courier unit of work instances.
	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// UoW manages transactions across the order, courier and batch
	// aggregates. Used by the handlers that move a batch through its
	// lifecycle.
	UoW interface {
		TxManager
		OrderRepoFactory
		CourierRepoFactory
		BatchRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate
	// operations.
	UoWFactory interface {
		Create() UoW
	}
)

// BatchAllocator triggers courier allocation for a formed batch. It is the
// seam between the handlers that produce batches (order confirmation, zone
// sweep, courier release) and the allocation handler itself.
type BatchAllocator interface {
	Handle(ctx context.Context, command AllocateBatchCommand) error
}
