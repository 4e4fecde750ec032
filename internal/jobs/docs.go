// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the dispatch service.
//
// # Available Jobs
//
// 1. ZoneSweepJob - Runs every 30 seconds to cut batches from zone queues whose oldest order aged past the time trigger
// 2. PendingAllocationJob - Runs every 30 seconds to retry courier allocation for batches parked while no courier was idle
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(sweepHandler, allocator, board, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Both jobs use the cron expression "*/30 * * * * *" which means they run
// every 30 seconds. The size trigger fires inline during order intake, so
// the sweep only has to catch queues that age out between orders.
//
// # Error Handling
//
// - Both jobs treat an empty idle-courier pool as an expected scenario, not an error
// - Other failures are logged and retried on the next tick
// - Failed job starts will stop any already running jobs
package jobs
