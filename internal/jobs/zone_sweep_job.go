package jobs

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/services"

	"github.com/robfig/cron/v3"
)

// ZoneSweepJob periodically cuts batches from zone queues that aged past
// the time trigger. The size trigger fires inline during order intake, so
// this job only catches quiet zones.
type ZoneSweepJob struct {
	handler commands.SweepZonesCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewZoneSweepJob creates a job that sweeps ripe zones every 30 seconds.
func NewZoneSweepJob(handler commands.SweepZonesCommandHandler, logger *slog.Logger) *ZoneSweepJob {
	return &ZoneSweepJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "zone_sweep_job"),
	}
}

// Start begins the zone sweep job.
func (j *ZoneSweepJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewSweepZonesCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			// A formed batch with nobody idle to take it is expected load
			if !errors.Is(err, services.ErrNoCourierIdle) {
				j.logger.ErrorContext(ctx, "Zone sweep job failed", "error", err)
			}
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Zone sweep job started (running every 30 seconds)")
	return nil
}

// Stop stops the zone sweep job.
func (j *ZoneSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Zone sweep job stopped")
}
