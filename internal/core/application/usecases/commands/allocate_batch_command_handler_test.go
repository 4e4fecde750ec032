package commands_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDepot(t *testing.T) kernel.GeoPoint {
	t.Helper()
	depot, err := kernel.NewGeoPoint(-31.3876594, -57.9628518)
	require.NoError(t, err)
	return depot
}

func seedOrder(t *testing.T, store *fakeStore, lat, lon float64, batchID int64) *order.Order {
	t.Helper()
	location, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), "chat-1", "some street 1", location,
		kernel.GenerateVerificationCode(), time.Now())
	require.NoError(t, err)
	require.NoError(t, o.MarkQueued(kernel.ClassifyZone(testDepot(t), location)))
	if batchID > 0 {
		require.NoError(t, o.MarkBatched(batchID))
	}
	store.orders[o.ID()] = o
	return o
}

func seedBatch(t *testing.T, store *fakeStore, id int64, orders []*order.Order) *batch.Batch {
	t.Helper()
	ids := make([]kernel.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID()
	}
	b, err := batch.NewBatch(id, kernel.ZoneNO, ids, time.Now())
	require.NoError(t, err)
	store.batches[id] = b
	return b
}

func seedCourier(t *testing.T, store *fakeStore, name string) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name, "099123456")
	require.NoError(t, err)
	store.couriers[c.ID()] = c
	return c
}

func newAllocator(
	store *fakeStore,
	board *services.DispatchBoard,
	planner stubPlanner,
	notifier *recordingNotifier,
	depot kernel.GeoPoint,
) *commands.AllocateBatchCommandHandler {
	return commands.NewAllocateBatchCommandHandler(
		fakeUoWFactory{store},
		services.NewRandomSelectionPolicyFromSource(rand.NewPCG(1, 1)),
		board,
		planner,
		notifier,
		depot,
		testLogger(),
	)
}

func TestAllocateBatchCommandHandler_Success(t *testing.T) {
	store := newFakeStore()
	board := services.NewDispatchBoard()
	notifier := &recordingNotifier{}
	depot := testDepot(t)

	// far, near: allocation should visit the near one first.
	far := seedOrder(t, store, -31.35, -57.93, 1)
	near := seedOrder(t, store, -31.387, -57.962, 1)
	seedBatch(t, store, 1, []*order.Order{far, near})
	board.Track(1)
	seeded := seedCourier(t, store, "Ana")

	handler := newAllocator(store, board, stubPlanner{routeMin: 5}, notifier, depot)
	cmd, err := commands.NewAllocateBatchCommand(1)
	require.NoError(t, err)
	require.NoError(t, handler.Handle(t.Context(), cmd))

	t.Run("binds courier and batch", func(t *testing.T) {
		storedBatch := store.batches[1]
		require.NotNil(t, storedBatch.CourierID())
		assert.True(t, seeded.ID().IsEqual(*storedBatch.CourierID()))

		storedCourier := store.couriers[seeded.ID()]
		assert.Equal(t, courier.Busy, storedCourier.Status())
		require.NotNil(t, storedCourier.CurrentBatchID())
		assert.Equal(t, int64(1), *storedCourier.CurrentBatchID())
		assert.Greater(t, storedCourier.DistanceKm(), 0.0)
	})

	t.Run("orders stops nearest first", func(t *testing.T) {
		stops := store.batches[1].RemainingStops()
		require.Len(t, stops, 2)
		assert.True(t, near.ID().IsEqual(stops[0]))
		assert.True(t, far.ID().IsEqual(stops[1]))
	})

	t.Run("marks every order out for delivery", func(t *testing.T) {
		assert.Equal(t, order.OutForDelivery, store.orders[near.ID()].Status())
		assert.Equal(t, order.OutForDelivery, store.orders[far.ID()].Status())
	})

	t.Run("notifies courier and customers", func(t *testing.T) {
		require.Len(t, notifier.legs, 1)
		assert.Equal(t, near.ID().String(), notifier.legs[0].OrderID)
		assert.Equal(t, 2, notifier.legs[0].StopsLeft)
		assert.InDelta(t, 5, notifier.legs[0].EtaMin, 1e-9)

		require.Len(t, notifier.updates, 2)
		assert.Equal(t, near.ID().String(), notifier.updates[0].OrderID)
		assert.Equal(t, store.orders[near.ID()].Code().Int(), notifier.updates[0].VerificationCode)
	})
}

func TestAllocateBatchCommandHandler_NoIdleCourier(t *testing.T) {
	store := newFakeStore()
	board := services.NewDispatchBoard()
	notifier := &recordingNotifier{}

	o := seedOrder(t, store, -31.35, -57.93, 1)
	seedBatch(t, store, 1, []*order.Order{o})
	board.Track(1)

	busy := seedCourier(t, store, "Ana")
	require.NoError(t, busy.AssignBatch(99))

	handler := newAllocator(store, board, stubPlanner{}, notifier, testDepot(t))
	cmd, err := commands.NewAllocateBatchCommand(1)
	require.NoError(t, err)

	err = handler.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, services.ErrNoCourierIdle)

	t.Run("batch is queued as pending", func(t *testing.T) {
		pendingID, ok := board.PopPending()
		require.True(t, ok)
		assert.Equal(t, int64(1), pendingID)
	})

	t.Run("nothing was mutated", func(t *testing.T) {
		assert.Nil(t, store.batches[1].CourierID())
		assert.Equal(t, order.Batched, store.orders[o.ID()].Status())
		assert.Empty(t, notifier.legs)
	})
}

func TestAllocateBatchCommandHandler_RouteFailureAborts(t *testing.T) {
	store := newFakeStore()
	board := services.NewDispatchBoard()
	notifier := &recordingNotifier{}

	o := seedOrder(t, store, -31.35, -57.93, 1)
	seedBatch(t, store, 1, []*order.Order{o})
	board.Track(1)
	seeded := seedCourier(t, store, "Ana")

	handler := newAllocator(store, board, stubPlanner{routeErr: ports.ErrNoRouteFound}, notifier, testDepot(t))
	cmd, err := commands.NewAllocateBatchCommand(1)
	require.NoError(t, err)

	err = handler.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, ports.ErrNoRouteFound)

	assert.Nil(t, store.batches[1].CourierID())
	assert.True(t, store.couriers[seeded.ID()].IsIdle())
	assert.Equal(t, order.Batched, store.orders[o.ID()].Status())
	assert.Empty(t, notifier.legs)
}

func TestAllocateBatchCommandHandler_AlreadyAllocatedIsNoOp(t *testing.T) {
	store := newFakeStore()
	board := services.NewDispatchBoard()
	notifier := &recordingNotifier{}

	o := seedOrder(t, store, -31.35, -57.93, 1)
	b := seedBatch(t, store, 1, []*order.Order{o})
	require.NoError(t, b.AssignCourier(kernel.NewUUID()))
	board.Track(1)
	seedCourier(t, store, "Ana")

	handler := newAllocator(store, board, stubPlanner{}, notifier, testDepot(t))
	cmd, err := commands.NewAllocateBatchCommand(1)
	require.NoError(t, err)

	require.NoError(t, handler.Handle(t.Context(), cmd))
	assert.Empty(t, notifier.legs)
	assert.Empty(t, notifier.updates)
}

func TestAllocateBatchCommand_Validation(t *testing.T) {
	_, err := commands.NewAllocateBatchCommand(0)
	require.Error(t, err)

	var notConstructed commands.AllocateBatchCommand
	require.ErrorIs(t, notConstructed.Validate(), commands.ErrAllocateBatchCommandIsNotConstructed)
}
