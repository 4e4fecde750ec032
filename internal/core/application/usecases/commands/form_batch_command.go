package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrFormBatchCommandIsNotConstructed = errors.New(
	"FormBatchCommand must be created via NewFormBatchCommand constructor",
)

// FormBatchCommand requests that a zone's queued orders be cut into a batch.
// Issued reactively when the size trigger fires on order confirmation and
// periodically by the zone sweep job for the age trigger.
type FormBatchCommand struct { //nolint:recvcheck //using for validation
	zone kernel.Zone

	guard guard.ConstructorGuard
}

// NewFormBatchCommand creates a command to cut a batch from the given zone.
func NewFormBatchCommand(zone kernel.Zone) (FormBatchCommand, error) {
	if !zone.Valid() {
		return FormBatchCommand{}, errs.NewValueIsInvalidError("zone")
	}

	return FormBatchCommand{
		zone:  zone,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c FormBatchCommand) Validate() error {
	return c.guard.Validate(ErrFormBatchCommandIsNotConstructed)
}

// Zone returns the zone to cut a batch from.
func (c FormBatchCommand) Zone() kernel.Zone {
	return c.zone
}
