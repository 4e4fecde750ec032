package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrSweepZonesCommandIsNotConstructed = errors.New(
	"SweepZonesCommand must be created via NewSweepZonesCommand constructor",
)

// SweepZonesCommand triggers a scan of every zone queue for a fired batch
// trigger. Issued periodically by the zone sweep job; this is how the
// 45-minute age trigger fires for slow zones.
type SweepZonesCommand struct {
	guard guard.ConstructorGuard
}

// NewSweepZonesCommand creates a command to sweep all zone queues.
func NewSweepZonesCommand() SweepZonesCommand {
	return SweepZonesCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *SweepZonesCommand) Validate() error {
	return c.guard.Validate(ErrSweepZonesCommandIsNotConstructed)
}
