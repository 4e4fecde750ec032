package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	*confirmOrderFixture
	handler commands.SweepZonesCommandHandler
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	base := newConfirmOrderFixture(t)
	allocator := newAllocator(base.store, base.board, stubPlanner{routeMin: 3}, base.notifier, testDepot(t))
	former := commands.NewFormBatchCommandHandler(
		fakeUoWFactory{base.store}, base.scheduler, base.board, allocator, testLogger())

	return &sweepFixture{
		confirmOrderFixture: base,
		handler:             commands.NewSweepZonesCommandHandler(base.scheduler, former, testLogger()),
	}
}

func TestSweepZonesCommandHandler_NothingRipe(t *testing.T) {
	f := newSweepFixture(t)

	require.NoError(t, f.handler.Handle(t.Context(), commands.NewSweepZonesCommand()))
	assert.Empty(t, f.store.batches)
}

func TestSweepZonesCommandHandler_FormsRipeZones(t *testing.T) {
	f := newSweepFixture(t)
	seedCourier(t, f.store, "Ana")
	seedCourier(t, f.store, "Bruno")

	// Fill two zones to the size trigger without the reactive path: enqueue
	// directly on the scheduler, as if both zones ripened by age.
	for range services.SizeThreshold {
		no := seedOrder(t, f.store, -31.40, -57.97, 0)
		require.NoError(t, f.scheduler.Enqueue(kernel.ZoneNO, no.ID(), time.Time{}))
		se := seedOrder(t, f.store, -31.37, -57.95, 0)
		require.NoError(t, f.scheduler.Enqueue(kernel.ZoneSE, se.ID(), time.Time{}))
	}

	require.NoError(t, f.handler.Handle(t.Context(), commands.NewSweepZonesCommand()))

	assert.Len(t, f.store.batches, 2)
	assert.Equal(t, 0, f.scheduler.QueueLengths()[kernel.ZoneNO])
	assert.Equal(t, 0, f.scheduler.QueueLengths()[kernel.ZoneSE])

	t.Run("each batch has its own courier", func(t *testing.T) {
		first := f.store.batches[1].CourierID()
		second := f.store.batches[2].CourierID()
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.False(t, first.IsEqual(*second))
	})
}

func TestSweepZonesCommandHandler_BusyCouriersDoNotFailSweep(t *testing.T) {
	f := newSweepFixture(t)

	for range services.SizeThreshold {
		o := seedOrder(t, f.store, -31.40, -57.97, 0)
		require.NoError(t, f.scheduler.Enqueue(kernel.ZoneNO, o.ID(), time.Time{}))
	}

	require.NoError(t, f.handler.Handle(t.Context(), commands.NewSweepZonesCommand()))

	assert.Len(t, f.store.batches, 1)
	assert.Equal(t, 1, f.board.PendingCount())
}

func TestFormBatchCommandHandler_EmptyZoneIsNoOp(t *testing.T) {
	f := newSweepFixture(t)
	allocator := newAllocator(f.store, f.board, stubPlanner{}, f.notifier, testDepot(t))
	former := commands.NewFormBatchCommandHandler(
		fakeUoWFactory{f.store}, f.scheduler, f.board, allocator, testLogger())

	cmd, err := commands.NewFormBatchCommand(kernel.ZoneNO)
	require.NoError(t, err)
	require.NoError(t, former.Handle(t.Context(), cmd))
	assert.Empty(t, f.store.batches)
}

func TestFormBatchCommandHandler_MarksOrdersBatched(t *testing.T) {
	f := newSweepFixture(t)
	seedCourier(t, f.store, "Ana")

	o := seedOrder(t, f.store, -31.40, -57.97, 0)
	require.NoError(t, f.scheduler.Enqueue(kernel.ZoneNO, o.ID(), time.Time{}))

	allocator := newAllocator(f.store, f.board, stubPlanner{}, f.notifier, testDepot(t))
	former := commands.NewFormBatchCommandHandler(
		fakeUoWFactory{f.store}, f.scheduler, f.board, allocator, testLogger())

	cmd, err := commands.NewFormBatchCommand(kernel.ZoneNO)
	require.NoError(t, err)
	require.NoError(t, former.Handle(t.Context(), cmd))

	stored := f.store.orders[o.ID()]
	require.NotNil(t, stored.BatchID())
	assert.Equal(t, int64(1), *stored.BatchID())
	assert.Equal(t, order.OutForDelivery, stored.Status())
}

func TestFormBatchCommand_Validation(t *testing.T) {
	_, err := commands.NewFormBatchCommand(kernel.Zone("XX"))
	require.Error(t, err)

	var notConstructed commands.FormBatchCommand
	require.ErrorIs(t, notConstructed.Validate(), commands.ErrFormBatchCommandIsNotConstructed)
}
