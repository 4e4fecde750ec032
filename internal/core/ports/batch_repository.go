package ports

import (
	"context"

	"dispatch/internal/core/domain/model/batch"
)

// BatchRepository defines the persistence contract for batch aggregates.
// Batch identifiers are monotonic and come from NextID, so a batch carries
// its final id from the moment it is constructed.
type BatchRepository interface {
	// Add persists a new batch aggregate.
	Add(ctx context.Context, aggregate *batch.Batch) error

	// Update persists changes to an existing batch aggregate.
	Update(ctx context.Context, aggregate *batch.Batch) error

	// Get retrieves a batch aggregate by its identifier.
	// Returns errs.ObjectNotFoundError when it does not exist.
	Get(ctx context.Context, id int64) (*batch.Batch, error)

	// NextID reserves the next batch identifier from storage.
	NextID(ctx context.Context) (int64, error)
}
