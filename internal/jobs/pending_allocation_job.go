package jobs

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/services"

	"github.com/robfig/cron/v3"
)

// PendingAllocationJob retries courier allocation for batches that were
// parked because no courier was idle when they formed. Delivery completion
// already retries one pending batch per freed courier; this job covers
// couriers that become available out of band, such as new registrations.
type PendingAllocationJob struct {
	allocator commands.BatchAllocator
	board     *services.DispatchBoard
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewPendingAllocationJob creates a job that drains the pending batch queue
// every 30 seconds.
func NewPendingAllocationJob(
	allocator commands.BatchAllocator,
	board *services.DispatchBoard,
	logger *slog.Logger,
) *PendingAllocationJob {
	return &PendingAllocationJob{
		allocator: allocator,
		board:     board,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "pending_allocation_job"),
	}
}

// Start begins the pending allocation job.
func (j *PendingAllocationJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		// Bound the tick to the queue length at its start: a batch the
		// allocator re-parks must not spin this loop.
		for range j.board.PendingCount() {
			batchID, ok := j.board.PopPending()
			if !ok {
				break
			}

			cmd, err := commands.NewAllocateBatchCommand(batchID)
			if err != nil {
				j.logger.ErrorContext(ctx, "Pending allocation job built an invalid command",
					"batch_id", batchID, "error", err)
				continue
			}

			if err := j.allocator.Handle(ctx, cmd); err != nil {
				// The allocator re-parked the batch; nobody is idle,
				// so the rest of the queue can wait for the next tick.
				if errors.Is(err, services.ErrNoCourierIdle) {
					break
				}
				j.logger.ErrorContext(ctx, "Pending allocation job failed",
					"batch_id", batchID, "error", err)
			}
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Pending allocation job started (running every 30 seconds)")
	return nil
}

// Stop stops the pending allocation job.
func (j *PendingAllocationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Pending allocation job stopped")
}
