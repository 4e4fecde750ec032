package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	Update(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier aggregate by its identifier.
	// Returns errs.ObjectNotFoundError when it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllIdle retrieves the couriers currently free to take a batch.
	GetAllIdle(ctx context.Context) ([]*courier.Courier, error)
}
