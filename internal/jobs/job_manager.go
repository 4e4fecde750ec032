package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/services"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	zoneSweepJob         *ZoneSweepJob
	pendingAllocationJob *PendingAllocationJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	sweepHandler commands.SweepZonesCommandHandler,
	allocator commands.BatchAllocator,
	board *services.DispatchBoard,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		zoneSweepJob:         NewZoneSweepJob(sweepHandler, logger),
		pendingAllocationJob: NewPendingAllocationJob(allocator, board, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.zoneSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start zone sweep job: %w", err)
	}

	if err := jm.pendingAllocationJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.zoneSweepJob.Stop()
		return fmt.Errorf("failed to start pending allocation job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.pendingAllocationJob.Stop()
	jm.zoneSweepJob.Stop()
}
