package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/services"
)

// SweepZonesCommandHandler cuts a batch from every zone whose trigger has
// fired. One zone failing does not stop the sweep of the others.
type SweepZonesCommandHandler struct {
	scheduler   *services.BatchScheduler
	batchFormer *FormBatchCommandHandler
	log         *slog.Logger
}

// NewSweepZonesCommandHandler creates a handler for the periodic zone sweep.
func NewSweepZonesCommandHandler(
	scheduler *services.BatchScheduler,
	batchFormer *FormBatchCommandHandler,
	log *slog.Logger,
) SweepZonesCommandHandler {
	return SweepZonesCommandHandler{
		scheduler:   scheduler,
		batchFormer: batchFormer,
		log:         log,
	}
}

// Handle forms a batch in each ripe zone. ErrNoCourierIdle is expected
// backpressure and never fails the sweep.
func (h SweepZonesCommandHandler) Handle(ctx context.Context, cmd SweepZonesCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var sweepErr error
	for _, ripe := range h.scheduler.RipeZones() {
		h.log.Info("batch trigger fired",
			"zone", string(ripe.Zone), "trigger", ripe.Trigger.String())

		formCmd, err := NewFormBatchCommand(ripe.Zone)
		if err != nil {
			sweepErr = errors.Join(sweepErr, err)
			continue
		}

		err = h.batchFormer.Handle(ctx, formCmd)
		if err != nil && !errors.Is(err, services.ErrNoCourierIdle) {
			sweepErr = errors.Join(sweepErr, err)
		}
	}

	return sweepErr
}
