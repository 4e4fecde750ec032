// Package ports defines the contracts between the application core and the
// outside world: persistence, route planning and outbound notifications.
// These interfaces keep the core independent of adapters and testable with
// mocks.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its identifier.
	// Returns errs.ObjectNotFoundError when it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByBatch retrieves the orders of a batch, regardless of status.
	GetByBatch(ctx context.Context, batchID int64) ([]*order.Order, error)
}
