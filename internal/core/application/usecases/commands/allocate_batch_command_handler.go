package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// AllocateBatchCommandHandler hands a formed batch to an idle courier.
//
// Allocation is fail-closed: when every courier is busy the batch goes to
// the pending queue and the handler returns services.ErrNoCourierIdle; a
// courier is never forced onto a second batch. When the road graph cannot
// produce a route to the first stop the whole allocation aborts and nothing
// is mutated.
type AllocateBatchCommandHandler struct {
	uowFactory UoWFactory
	policy     services.SelectionPolicy
	board      *services.DispatchBoard
	planner    ports.RoutePlanner
	notifier   ports.Notifier
	depot      kernel.GeoPoint
	log        *slog.Logger
}

// NewAllocateBatchCommandHandler creates a handler for batch allocation.
func NewAllocateBatchCommandHandler(
	uowFactory UoWFactory,
	policy services.SelectionPolicy,
	board *services.DispatchBoard,
	planner ports.RoutePlanner,
	notifier ports.Notifier,
	depot kernel.GeoPoint,
	log *slog.Logger,
) *AllocateBatchCommandHandler {
	return &AllocateBatchCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		board:      board,
		planner:    planner,
		notifier:   notifier,
		depot:      depot,
		log:        log,
	}
}

// Handle selects a courier, orders the batch's stops from the depot, binds
// courier and batch inside one transaction, and notifies the courier and
// every customer once the transaction commits. Allocating an already
// allocated batch is a no-op.
func (h *AllocateBatchCommandHandler) Handle(ctx context.Context, cmd AllocateBatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	allocBatch, err := uow.BatchRepository().Get(ctx, cmd.BatchID())
	if err != nil {
		return err
	}
	if allocBatch.CourierID() != nil {
		return nil
	}

	idle, err := uow.CourierRepository().GetAllIdle(ctx)
	if err != nil {
		return err
	}

	selected, err := h.policy.SelectCourier(idle)
	if errors.Is(err, services.ErrNoCourierIdle) {
		h.board.EnqueuePending(cmd.BatchID())
		h.log.Info("no idle courier, batch queued as pending",
			"batchId", cmd.BatchID(), "pending", h.board.PendingCount())
		return err
	}
	if err != nil {
		return err
	}

	orders, err := h.ordersByID(ctx, uow, cmd.BatchID())
	if err != nil {
		return err
	}

	firstLeg, err := h.planStops(ctx, allocBatch, orders)
	if err != nil {
		// The batch stays unassigned with its orders Batched until an
		// operator re-triggers allocation.
		h.log.Error("batch allocation aborted, routing failed",
			"batchId", cmd.BatchID(), "orders", len(orders), "error", err)
		return err
	}

	if err = allocBatch.AssignCourier(selected.ID()); err != nil {
		return err
	}
	if err = selected.AssignBatch(allocBatch.ID()); err != nil {
		return err
	}
	if err = selected.AddDistance(firstLeg.DistanceKm); err != nil {
		return err
	}

	for _, stopOrder := range orders {
		if err = stopOrder.MarkOutForDelivery(); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, stopOrder); err != nil {
			return err
		}
	}

	if err = uow.BatchRepository().Update(ctx, allocBatch); err != nil {
		return err
	}
	if err = uow.CourierRepository().Update(ctx, selected); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.log.Info("batch allocated",
		"batchId", allocBatch.ID(),
		"courier", selected.Name(),
		"firstLegKm", firstLeg.DistanceKm)

	h.notifyAllocation(ctx, allocBatch, selected, orders, firstLeg)
	return nil
}

func (h *AllocateBatchCommandHandler) ordersByID(
	ctx context.Context,
	uow UoW,
	batchID int64,
) (map[kernel.UUID]*order.Order, error) {
	batchOrders, err := uow.OrderRepository().GetByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	orders := make(map[kernel.UUID]*order.Order, len(batchOrders))
	for _, o := range batchOrders {
		orders[o.ID()] = o
	}
	return orders, nil
}

// planStops orders the batch's stops nearest-first from the depot and
// returns the road route to the first stop.
func (h *AllocateBatchCommandHandler) planStops(
	ctx context.Context,
	allocBatch *batch.Batch,
	orders map[kernel.UUID]*order.Order,
) (ports.Route, error) {
	stops := allocBatch.RemainingStops()
	points := make([]kernel.GeoPoint, len(stops))
	for i, stopID := range stops {
		stopOrder, ok := orders[stopID]
		if !ok {
			return ports.Route{}, fmt.Errorf("batch %d references unknown order %s", allocBatch.ID(), stopID)
		}
		points[i] = stopOrder.Location()
	}

	plan, err := h.planner.ComputeVisitOrder(ctx, h.depot, points)
	if err != nil {
		return ports.Route{}, err
	}

	ordered := make([]kernel.UUID, len(plan.Order))
	for i, stopIndex := range plan.Order {
		ordered[i] = stops[stopIndex]
	}
	if err = allocBatch.Reorder(ordered); err != nil {
		return ports.Route{}, err
	}

	firstStop := orders[ordered[0]]
	return h.planner.ComputeRoute(ctx, h.depot, firstStop.Location())
}

func (h *AllocateBatchCommandHandler) notifyAllocation(
	ctx context.Context,
	allocBatch *batch.Batch,
	selected *courier.Courier,
	orders map[kernel.UUID]*order.Order,
	firstLeg ports.Route,
) {
	stops := allocBatch.RemainingStops()
	firstStop := orders[stops[0]]

	leg := ports.CourierLeg{
		CourierPhone:     selected.Phone(),
		BatchID:          allocBatch.ID(),
		OrderID:          firstStop.ID().String(),
		Address:          firstStop.Address(),
		DistanceKm:       firstLeg.DistanceKm,
		EtaMin:           firstLeg.TimeMin,
		RouteImageRef:    zoneRouteImage(allocBatch.Zone()),
		VerificationCode: firstStop.Code().Int(),
		StopsLeft:        len(stops),
	}
	if err := h.notifier.NotifyCourier(ctx, leg); err != nil {
		h.log.Warn("courier notification failed", "batchId", allocBatch.ID(), "error", err)
	}

	for i, stopID := range stops {
		stopOrder := orders[stopID]
		update := ports.CustomerUpdate{
			CustomerRef:      stopOrder.CustomerRef(),
			OrderID:          stopOrder.ID().String(),
			CourierName:      selected.Name(),
			VerificationCode: stopOrder.Code().Int(),
		}
		if i == 0 {
			update.EtaMin = firstLeg.TimeMin
		}
		if err := h.notifier.NotifyCustomer(ctx, update); err != nil {
			h.log.Warn("customer notification failed", "orderId", stopOrder.ID().String(), "error", err)
		}
	}
}

// zoneRouteImage names the pre-rendered route animation for a zone.
func zoneRouteImage(zone kernel.Zone) string {
	return fmt.Sprintf("routes/%s.gif", zone)
}
