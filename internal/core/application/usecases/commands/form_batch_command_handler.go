package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

// FormBatchCommandHandler cuts a batch from a zone queue, persists it, and
// hands it to the allocator.
//
// The scheduler cut and the database write are not one atomic step: if
// persisting the batch fails, the cut orders are re-queued to their zone
// (appended in cut order, restarting the zone's waiting clock) so no
// confirmed order is ever dropped.
type FormBatchCommandHandler struct {
	uowFactory UoWFactory
	scheduler  *services.BatchScheduler
	board      *services.DispatchBoard
	allocator  BatchAllocator
	log        *slog.Logger
}

// NewFormBatchCommandHandler creates a handler for batch formation.
func NewFormBatchCommandHandler(
	uowFactory UoWFactory,
	scheduler *services.BatchScheduler,
	board *services.DispatchBoard,
	allocator BatchAllocator,
	log *slog.Logger,
) *FormBatchCommandHandler {
	return &FormBatchCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		board:      board,
		allocator:  allocator,
		log:        log,
	}
}

// Handle cuts the zone queue, persists the batch with its orders marked
// Batched, registers it on the dispatch board, and requests allocation.
// Returns services.ErrNoCourierIdle when the batch formed but every courier
// was busy; the batch is then queued as pending.
func (h *FormBatchCommandHandler) Handle(ctx context.Context, cmd FormBatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	orderIDs := h.scheduler.FormBatch(cmd.Zone())
	if len(orderIDs) == 0 {
		return nil
	}

	batchID, err := h.persistBatch(ctx, cmd, orderIDs)
	if err != nil {
		// Put the cut orders back so they batch on a later trigger.
		for _, orderID := range orderIDs {
			if enqErr := h.scheduler.Enqueue(cmd.Zone(), orderID, time.Time{}); enqErr != nil {
				h.log.Error("failed to re-queue order after batch formation failure",
					"orderId", orderID.String(), "zone", string(cmd.Zone()), "error", enqErr)
			}
		}
		return err
	}

	h.board.Track(batchID)
	h.log.Info("batch formed",
		"batchId", batchID,
		"zone", string(cmd.Zone()),
		"orders", len(orderIDs))

	allocateCmd, err := NewAllocateBatchCommand(batchID)
	if err != nil {
		return err
	}

	return h.allocator.Handle(ctx, allocateCmd)
}

func (h *FormBatchCommandHandler) persistBatch(
	ctx context.Context,
	cmd FormBatchCommand,
	orderIDs []kernel.UUID,
) (int64, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchRepo := uow.BatchRepository()

	batchID, err := batchRepo.NextID(ctx)
	if err != nil {
		return 0, err
	}

	newBatch, err := batch.NewBatch(batchID, cmd.Zone(), orderIDs, time.Now())
	if err != nil {
		return 0, err
	}

	if err = batchRepo.Add(ctx, newBatch); err != nil {
		return 0, err
	}

	orderRepo := uow.OrderRepository()
	for _, orderID := range orderIDs {
		queuedOrder, err := orderRepo.Get(ctx, orderID)
		if err != nil {
			return 0, err
		}
		if err = queuedOrder.MarkBatched(batchID); err != nil {
			return 0, err
		}
		if err = orderRepo.Update(ctx, queuedOrder); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return batchID, nil
}
