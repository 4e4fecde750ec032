package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
)

// ConfirmOrderCommandHandler takes a confirmed order through intake: it
// persists the order with a fresh verification code, classifies it into a
// depot quadrant, queues it there, and cuts a batch right away when the
// zone's trigger fires.
type ConfirmOrderCommandHandler struct {
	uowFactory  OrderUoWFactory
	scheduler   *services.BatchScheduler
	batchFormer *FormBatchCommandHandler
	depot       kernel.GeoPoint
	log         *slog.Logger
}

// NewConfirmOrderCommandHandler creates a handler for order intake.
func NewConfirmOrderCommandHandler(
	uowFactory OrderUoWFactory,
	scheduler *services.BatchScheduler,
	batchFormer *FormBatchCommandHandler,
	depot kernel.GeoPoint,
	log *slog.Logger,
) ConfirmOrderCommandHandler {
	return ConfirmOrderCommandHandler{
		uowFactory:  uowFactory,
		scheduler:   scheduler,
		batchFormer: batchFormer,
		depot:       depot,
		log:         log,
	}
}

// Handle persists the new order as queued in its zone, then checks the
// zone's batch trigger. Batch formation runs in its own transaction; a
// formation failure does not undo the confirmed order.
func (h *ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	zone := kernel.ClassifyZone(h.depot, cmd.Location())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerRef(),
		cmd.Address(),
		cmd.Location(),
		kernel.GenerateVerificationCode(),
		cmd.ConfirmedAt(),
	)
	if err != nil {
		return err
	}

	if err = newOrder.MarkQueued(zone); err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.scheduler.Enqueue(zone, newOrder.ID(), cmd.ConfirmedAt()); err != nil {
		return err
	}

	h.log.Info("order confirmed",
		"orderId", newOrder.ID().String(),
		"zone", string(zone),
		"queued", h.scheduler.QueueLengths()[zone])

	fired, trigger := h.scheduler.ShouldFormBatch(zone)
	if !fired {
		return nil
	}

	h.log.Info("batch trigger fired",
		"zone", string(zone), "trigger", trigger.String())

	formCmd, err := NewFormBatchCommand(zone)
	if err != nil {
		return err
	}

	if err = h.batchFormer.Handle(ctx, formCmd); err != nil && !errors.Is(err, services.ErrNoCourierIdle) {
		h.log.Error("batch formation after order confirmation failed",
			"zone", string(zone), "error", err)
		return err
	}

	return nil
}
