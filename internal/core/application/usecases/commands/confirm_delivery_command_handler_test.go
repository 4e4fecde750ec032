package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type confirmDeliveryFixture struct {
	store    *fakeStore
	board    *services.DispatchBoard
	notifier *recordingNotifier
	handler  *commands.ConfirmDeliveryCommandHandler
	courier  *courier.Courier
	orders   []*order.Order
}

// newConfirmDeliveryFixture builds a batch of n orders already out for
// delivery with one busy courier.
func newConfirmDeliveryFixture(t *testing.T, n int) *confirmDeliveryFixture {
	t.Helper()

	store := newFakeStore()
	board := services.NewDispatchBoard()
	notifier := &recordingNotifier{}
	depot := testDepot(t)

	orders := make([]*order.Order, n)
	for i := range orders {
		orders[i] = seedOrder(t, store, -31.38+float64(i)*0.01, -57.96, 1)
		require.NoError(t, orders[i].MarkOutForDelivery())
	}
	b := seedBatch(t, store, 1, orders)
	board.Track(1)

	c := seedCourier(t, store, "Ana")
	require.NoError(t, c.AssignBatch(1))
	require.NoError(t, b.AssignCourier(c.ID()))

	allocator := newAllocator(store, board, stubPlanner{routeMin: 3}, notifier, depot)
	handler := commands.NewConfirmDeliveryCommandHandler(
		fakeUoWFactory{store},
		board,
		stubPlanner{routeMin: 3},
		notifier,
		allocator,
		depot,
		testLogger(),
	)

	return &confirmDeliveryFixture{
		store:    store,
		board:    board,
		notifier: notifier,
		handler:  handler,
		courier:  c,
		orders:   orders,
	}
}

func (f *confirmDeliveryFixture) confirm(t *testing.T, o *order.Order) error {
	t.Helper()
	cmd, err := commands.NewConfirmDeliveryCommand(f.courier.ID(), o.ID(), f.store.orders[o.ID()].Code().Int())
	require.NoError(t, err)
	return f.handler.Handle(t.Context(), cmd)
}

func TestConfirmDeliveryCommandHandler_MidBatch(t *testing.T) {
	f := newConfirmDeliveryFixture(t, 2)
	first := f.orders[0]
	second := f.orders[1]

	require.NoError(t, f.confirm(t, first))

	t.Run("order is delivered and removed from the batch", func(t *testing.T) {
		assert.Equal(t, order.Delivered, f.store.orders[first.ID()].Status())

		stops := f.store.batches[1].RemainingStops()
		require.Len(t, stops, 1)
		assert.True(t, second.ID().IsEqual(stops[0]))
	})

	t.Run("courier stays busy and gains the next leg", func(t *testing.T) {
		stored := f.store.couriers[f.courier.ID()]
		assert.Equal(t, courier.Busy, stored.Status())
		assert.Greater(t, stored.DistanceKm(), 0.0)
	})

	t.Run("courier gets the next stop, customer gets a rating request", func(t *testing.T) {
		require.Len(t, f.notifier.legs, 1)
		assert.Equal(t, second.ID().String(), f.notifier.legs[0].OrderID)
		assert.Equal(t, 1, f.notifier.legs[0].StopsLeft)
		assert.Equal(t, second.Code().Int(), f.notifier.legs[0].VerificationCode)

		require.Len(t, f.notifier.ratings, 1)
		assert.Equal(t, first.ID().String(), f.notifier.ratings[0].OrderID)

		require.Len(t, f.notifier.updates, 1)
		assert.Equal(t, second.ID().String(), f.notifier.updates[0].OrderID)
	})
}

func TestConfirmDeliveryCommandHandler_ClosesBatch(t *testing.T) {
	f := newConfirmDeliveryFixture(t, 1)
	only := f.orders[0]

	require.NoError(t, f.confirm(t, only))

	t.Run("courier is released with the return leg accounted", func(t *testing.T) {
		stored := f.store.couriers[f.courier.ID()]
		assert.True(t, stored.IsIdle())
		assert.Nil(t, stored.CurrentBatchID())
		assert.Greater(t, stored.DistanceKm(), 0.0)
	})

	t.Run("batch is complete and off the board", func(t *testing.T) {
		assert.True(t, f.store.batches[1].IsComplete())
		_, err := f.board.LockBatch(1)
		require.Error(t, err)
	})

	t.Run("courier receives a batch summary", func(t *testing.T) {
		require.Len(t, f.notifier.summaries, 1)
		assert.Equal(t, int64(1), f.notifier.summaries[0].BatchID)
		assert.Equal(t, 1, f.notifier.summaries[0].Delivered)
		assert.Greater(t, f.notifier.summaries[0].ReturnKm, 0.0)
	})

	t.Run("confirming again fails", func(t *testing.T) {
		err := f.confirm(t, only)
		require.ErrorIs(t, err, commands.ErrOrderNotOutForDelivery)
	})
}

func TestConfirmDeliveryCommandHandler_ReallocatesPendingBatch(t *testing.T) {
	f := newConfirmDeliveryFixture(t, 1)

	// A second batch formed while the only courier was busy.
	waiting := seedOrder(t, f.store, -31.36, -57.94, 2)
	seedBatch(t, f.store, 2, []*order.Order{waiting})
	f.board.Track(2)
	f.board.EnqueuePending(2)

	require.NoError(t, f.confirm(t, f.orders[0]))

	t.Run("freed courier takes the pending batch", func(t *testing.T) {
		stored := f.store.couriers[f.courier.ID()]
		assert.Equal(t, courier.Busy, stored.Status())
		require.NotNil(t, stored.CurrentBatchID())
		assert.Equal(t, int64(2), *stored.CurrentBatchID())
		assert.Equal(t, 0, f.board.PendingCount())
	})

	t.Run("pending batch orders go out for delivery", func(t *testing.T) {
		assert.Equal(t, order.OutForDelivery, f.store.orders[waiting.ID()].Status())
	})
}

func TestConfirmDeliveryCommandHandler_CodeMismatch(t *testing.T) {
	f := newConfirmDeliveryFixture(t, 1)
	only := f.orders[0]

	wrongCode := (f.store.orders[only.ID()].Code().Int() + 1) % 1000000
	cmd, err := commands.NewConfirmDeliveryCommand(f.courier.ID(), only.ID(), wrongCode)
	require.NoError(t, err)

	err = f.handler.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, commands.ErrVerificationCodeMismatch)

	t.Run("order stays out for delivery", func(t *testing.T) {
		assert.Equal(t, order.OutForDelivery, f.store.orders[only.ID()].Status())
		assert.Len(t, f.store.batches[1].RemainingStops(), 1)
	})

	t.Run("the right code still works afterwards", func(t *testing.T) {
		require.NoError(t, f.confirm(t, only))
	})
}

func TestConfirmDeliveryCommandHandler_Errors(t *testing.T) {
	f := newConfirmDeliveryFixture(t, 1)

	t.Run("unknown order", func(t *testing.T) {
		cmd, err := commands.NewConfirmDeliveryCommand(f.courier.ID(), kernel.NewUUID(), 123)
		require.NoError(t, err)
		require.ErrorIs(t, f.handler.Handle(t.Context(), cmd), errs.ErrObjectNotFound)
	})

	t.Run("order not yet out for delivery", func(t *testing.T) {
		queued := seedOrder(t, f.store, -31.38, -57.96, 0)
		cmd, err := commands.NewConfirmDeliveryCommand(f.courier.ID(), queued.ID(), queued.Code().Int())
		require.NoError(t, err)
		require.ErrorIs(t, f.handler.Handle(t.Context(), cmd), commands.ErrOrderNotOutForDelivery)
	})

	t.Run("another courier cannot confirm the stop", func(t *testing.T) {
		only := f.orders[0]
		other := seedCourier(t, f.store, "Bruno")
		cmd, err := commands.NewConfirmDeliveryCommand(other.ID(), only.ID(), f.store.orders[only.ID()].Code().Int())
		require.NoError(t, err)

		require.ErrorIs(t, f.handler.Handle(t.Context(), cmd), errs.ErrObjectNotFound)
		assert.Equal(t, order.OutForDelivery, f.store.orders[only.ID()].Status())
	})

	t.Run("unconstructed command", func(t *testing.T) {
		var cmd commands.ConfirmDeliveryCommand
		require.Error(t, f.handler.Handle(t.Context(), cmd))
	})
}

// brokenPlannerHandler rebuilds the fixture's handler over a planner that
// cannot route.
func brokenPlannerHandler(t *testing.T, f *confirmDeliveryFixture, plannerErr error) *commands.ConfirmDeliveryCommandHandler {
	t.Helper()
	depot := testDepot(t)
	planner := stubPlanner{routeErr: plannerErr}
	allocator := newAllocator(f.store, f.board, planner, f.notifier, depot)
	return commands.NewConfirmDeliveryCommandHandler(
		fakeUoWFactory{f.store},
		f.board,
		planner,
		f.notifier,
		allocator,
		depot,
		testLogger(),
	)
}

func TestConfirmDeliveryCommandHandler_PlannerFailureAborts(t *testing.T) {
	t.Run("mid-batch leg", func(t *testing.T) {
		f := newConfirmDeliveryFixture(t, 2)
		first := f.orders[0]
		handler := brokenPlannerHandler(t, f, ports.ErrGraphUnavailable)

		cmd, err := commands.NewConfirmDeliveryCommand(
			f.courier.ID(), first.ID(), f.store.orders[first.ID()].Code().Int())
		require.NoError(t, err)

		require.ErrorIs(t, handler.Handle(t.Context(), cmd), ports.ErrGraphUnavailable)

		assert.Equal(t, order.OutForDelivery, f.store.orders[first.ID()].Status())
		assert.Len(t, f.store.batches[1].RemainingStops(), 2)
		assert.Zero(t, f.store.couriers[f.courier.ID()].DistanceKm())
		assert.Empty(t, f.notifier.legs)
		assert.Empty(t, f.notifier.updates)
		assert.Empty(t, f.notifier.ratings)
	})

	t.Run("return leg on the last stop", func(t *testing.T) {
		f := newConfirmDeliveryFixture(t, 1)
		only := f.orders[0]
		handler := brokenPlannerHandler(t, f, ports.ErrNoRouteFound)

		cmd, err := commands.NewConfirmDeliveryCommand(
			f.courier.ID(), only.ID(), f.store.orders[only.ID()].Code().Int())
		require.NoError(t, err)

		require.ErrorIs(t, handler.Handle(t.Context(), cmd), ports.ErrNoRouteFound)

		assert.Equal(t, order.OutForDelivery, f.store.orders[only.ID()].Status())
		assert.Equal(t, courier.Busy, f.store.couriers[f.courier.ID()].Status())
		assert.Empty(t, f.notifier.summaries)
	})
}
