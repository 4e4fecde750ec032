package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAllocateBatchCommandIsNotConstructed = errors.New(
	"AllocateBatchCommand must be created via NewAllocateBatchCommand constructor",
)

// AllocateBatchCommand requests that a formed batch be handed to an idle
// courier.
type AllocateBatchCommand struct { //nolint:recvcheck //using for validation
	batchID int64

	guard guard.ConstructorGuard
}

// NewAllocateBatchCommand creates a command to allocate the given batch.
func NewAllocateBatchCommand(batchID int64) (AllocateBatchCommand, error) {
	if batchID <= 0 {
		return AllocateBatchCommand{}, errs.NewValueIsInvalidError("batchID")
	}

	return AllocateBatchCommand{
		batchID: batchID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AllocateBatchCommand) Validate() error {
	return c.guard.Validate(ErrAllocateBatchCommandIsNotConstructed)
}

// BatchID returns the batch to allocate.
func (c AllocateBatchCommand) BatchID() int64 {
	return c.batchID
}
