package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrVerificationCodeMismatch is returned when the presented code does
	// not match the order's code. The order stays out for delivery.
	ErrVerificationCodeMismatch = errors.New("verification code does not match")

	// ErrOrderNotOutForDelivery is returned when the confirmed order is not
	// currently on a courier's route.
	ErrOrderNotOutForDelivery = errors.New("order is not out for delivery")
)

// ConfirmDeliveryCommandHandler applies one delivery confirmation to its
// batch. Confirmations for the same batch are serialized through the
// dispatch board, so two couriers' phones racing on one batch cannot
// interleave.
//
// Closing a batch releases its courier; if a pending batch is waiting, the
// freed courier is allocated to it immediately.
type ConfirmDeliveryCommandHandler struct {
	uowFactory UoWFactory
	board      *services.DispatchBoard
	planner    ports.RoutePlanner
	notifier   ports.Notifier
	allocator  BatchAllocator
	depot      kernel.GeoPoint
	log        *slog.Logger
}

// NewConfirmDeliveryCommandHandler creates a handler for delivery
// confirmations.
func NewConfirmDeliveryCommandHandler(
	uowFactory UoWFactory,
	board *services.DispatchBoard,
	planner ports.RoutePlanner,
	notifier ports.Notifier,
	allocator BatchAllocator,
	depot kernel.GeoPoint,
	log *slog.Logger,
) *ConfirmDeliveryCommandHandler {
	return &ConfirmDeliveryCommandHandler{
		uowFactory: uowFactory,
		board:      board,
		planner:    planner,
		notifier:   notifier,
		allocator:  allocator,
		depot:      depot,
		log:        log,
	}
}

// Handle verifies the code, marks the order delivered, shrinks the batch,
// and accounts the courier's next leg: to the following stop while the
// batch is open, back to the depot when it closes. A planner failure aborts
// the confirmation before anything is committed; the courier resubmits the
// same code once routing is back.
func (h *ConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	batchID, err := h.lookupBatchID(ctx, cmd)
	if err != nil {
		return err
	}

	unlock, err := h.board.LockBatch(batchID)
	if err != nil {
		return err
	}
	defer unlock()

	return h.confirmLocked(ctx, cmd, batchID)
}

// lookupBatchID resolves the order's batch outside the batch lock.
func (h *ConfirmDeliveryCommandHandler) lookupBatchID(ctx context.Context, cmd ConfirmDeliveryCommand) (int64, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	confirmedOrder, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return 0, err
	}

	if confirmedOrder.Status() != order.OutForDelivery || confirmedOrder.BatchID() == nil {
		return 0, ErrOrderNotOutForDelivery
	}

	return *confirmedOrder.BatchID(), nil
}

func (h *ConfirmDeliveryCommandHandler) confirmLocked(
	ctx context.Context,
	cmd ConfirmDeliveryCommand,
	batchID int64,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	confirmedOrder, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if confirmedOrder.Status() != order.OutForDelivery {
		return ErrOrderNotOutForDelivery
	}
	if !confirmedOrder.Code().Matches(cmd.Code()) {
		return ErrVerificationCodeMismatch
	}

	deliveryBatch, err := uow.BatchRepository().Get(ctx, batchID)
	if err != nil {
		return err
	}
	if deliveryBatch.CourierID() == nil {
		return ErrOrderNotOutForDelivery
	}

	batchCourier, err := uow.CourierRepository().Get(ctx, *deliveryBatch.CourierID())
	if err != nil {
		return err
	}
	// A courier can only confirm stops on their own batch.
	if !batchCourier.ID().IsEqual(cmd.CourierID()) {
		return errs.NewObjectNotFoundError("order", cmd.OrderID())
	}

	if err = confirmedOrder.MarkDelivered(); err != nil {
		return err
	}
	if err = deliveryBatch.RemoveOrder(confirmedOrder.ID()); err != nil {
		return err
	}

	if deliveryBatch.IsComplete() {
		return h.closeBatch(ctx, uow, confirmedOrder, deliveryBatch, batchCourier)
	}

	return h.advanceBatch(ctx, uow, confirmedOrder, deliveryBatch, batchCourier)
}

// advanceBatch moves the courier to the next stop of a still-open batch.
func (h *ConfirmDeliveryCommandHandler) advanceBatch(
	ctx context.Context,
	uow UoW,
	confirmedOrder *order.Order,
	deliveryBatch *batch.Batch,
	batchCourier *courier.Courier,
) error {
	nextStopID, err := deliveryBatch.NextStop()
	if err != nil {
		return err
	}

	nextOrder, err := uow.OrderRepository().Get(ctx, nextStopID)
	if err != nil {
		return err
	}

	leg, err := h.estimateLeg(ctx, confirmedOrder.Location(), nextOrder.Location())
	if err != nil {
		return err
	}
	if err = batchCourier.AddDistance(leg.DistanceKm); err != nil {
		return err
	}

	if err = h.persistConfirmation(ctx, uow, confirmedOrder, deliveryBatch, batchCourier); err != nil {
		return err
	}

	h.log.Info("delivery confirmed",
		"orderId", confirmedOrder.ID().String(),
		"batchId", deliveryBatch.ID(),
		"stopsLeft", len(deliveryBatch.RemainingStops()))

	h.requestRating(ctx, confirmedOrder)

	courierLeg := ports.CourierLeg{
		CourierPhone:     batchCourier.Phone(),
		BatchID:          deliveryBatch.ID(),
		OrderID:          nextOrder.ID().String(),
		Address:          nextOrder.Address(),
		DistanceKm:       leg.DistanceKm,
		EtaMin:           leg.TimeMin,
		RouteImageRef:    zoneRouteImage(deliveryBatch.Zone()),
		VerificationCode: nextOrder.Code().Int(),
		StopsLeft:        len(deliveryBatch.RemainingStops()),
	}
	if err = h.notifier.NotifyCourier(ctx, courierLeg); err != nil {
		h.log.Warn("courier notification failed", "batchId", deliveryBatch.ID(), "error", err)
	}

	update := ports.CustomerUpdate{
		CustomerRef:      nextOrder.CustomerRef(),
		OrderID:          nextOrder.ID().String(),
		CourierName:      batchCourier.Name(),
		EtaMin:           leg.TimeMin,
		VerificationCode: nextOrder.Code().Int(),
	}
	if err = h.notifier.NotifyCustomer(ctx, update); err != nil {
		h.log.Warn("customer notification failed", "orderId", nextOrder.ID().String(), "error", err)
	}

	return nil
}

// closeBatch finishes a fully delivered batch: the courier heads back to
// the depot, is released, and picks up the oldest pending batch if any.
func (h *ConfirmDeliveryCommandHandler) closeBatch(
	ctx context.Context,
	uow UoW,
	confirmedOrder *order.Order,
	deliveryBatch *batch.Batch,
	batchCourier *courier.Courier,
) error {
	returnLeg, err := h.estimateLeg(ctx, confirmedOrder.Location(), h.depot)
	if err != nil {
		return err
	}
	if err := batchCourier.AddDistance(returnLeg.DistanceKm); err != nil {
		return err
	}
	if err := batchCourier.Release(); err != nil {
		return err
	}

	if err := h.persistConfirmation(ctx, uow, confirmedOrder, deliveryBatch, batchCourier); err != nil {
		return err
	}

	h.board.Forget(deliveryBatch.ID())
	h.log.Info("batch completed",
		"batchId", deliveryBatch.ID(),
		"courier", batchCourier.Name(),
		"totalKm", batchCourier.DistanceKm())

	h.requestRating(ctx, confirmedOrder)

	delivered := 0
	if batchOrders, err := h.countBatchOrders(ctx, deliveryBatch.ID()); err == nil {
		delivered = batchOrders
	}

	summary := ports.BatchSummary{
		CourierPhone: batchCourier.Phone(),
		BatchID:      deliveryBatch.ID(),
		Delivered:    delivered,
		TotalKm:      batchCourier.DistanceKm(),
		ReturnKm:     returnLeg.DistanceKm,
		ReturnEtaMin: returnLeg.TimeMin,
	}
	if err := h.notifier.NotifyBatchComplete(ctx, summary); err != nil {
		h.log.Warn("batch summary notification failed", "batchId", deliveryBatch.ID(), "error", err)
	}

	if pendingID, ok := h.board.PopPending(); ok {
		allocateCmd, err := NewAllocateBatchCommand(pendingID)
		if err != nil {
			return err
		}
		if err = h.allocator.Handle(ctx, allocateCmd); err != nil && !errors.Is(err, services.ErrNoCourierIdle) {
			return err
		}
	}

	return nil
}

// countBatchOrders counts the orders a closed batch carried, for the
// courier's summary. Uses a fresh read-only unit of work since the
// confirmation transaction is already committed.
func (h *ConfirmDeliveryCommandHandler) countBatchOrders(ctx context.Context, batchID int64) (int, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchOrders, err := uow.OrderRepository().GetByBatch(ctx, batchID)
	if err != nil {
		return 0, err
	}

	return len(batchOrders), nil
}

func (h *ConfirmDeliveryCommandHandler) persistConfirmation(
	ctx context.Context,
	uow UoW,
	confirmedOrder *order.Order,
	deliveryBatch *batch.Batch,
	batchCourier *courier.Courier,
) error {
	if err := uow.OrderRepository().Update(ctx, confirmedOrder); err != nil {
		return err
	}
	if err := uow.BatchRepository().Update(ctx, deliveryBatch); err != nil {
		return err
	}
	if err := uow.CourierRepository().Update(ctx, batchCourier); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// estimateLeg computes the road route between two points. Planner failures
// abort the confirmation: a zero leg would commit a 0 km account and a
// 0-minute ETA, which is worse than asking the courier to resubmit.
func (h *ConfirmDeliveryCommandHandler) estimateLeg(ctx context.Context, from, to kernel.GeoPoint) (ports.Route, error) {
	leg, err := h.planner.ComputeRoute(ctx, from, to)
	if err != nil {
		h.log.Error("leg estimation failed", "error", err)
		return ports.Route{}, err
	}
	return leg, nil
}

func (h *ConfirmDeliveryCommandHandler) requestRating(ctx context.Context, confirmedOrder *order.Order) {
	request := ports.RatingRequest{
		CustomerRef: confirmedOrder.CustomerRef(),
		OrderID:     confirmedOrder.ID().String(),
	}
	if err := h.notifier.RequestRating(ctx, request); err != nil {
		h.log.Warn("rating request failed", "orderId", confirmedOrder.ID().String(), "error", err)
	}
}
