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

type confirmOrderFixture struct {
	store     *fakeStore
	board     *services.DispatchBoard
	scheduler *services.BatchScheduler
	notifier  *recordingNotifier
	handler   commands.ConfirmOrderCommandHandler
}

func newConfirmOrderFixture(t *testing.T) *confirmOrderFixture {
	t.Helper()

	store := newFakeStore()
	board := services.NewDispatchBoard()
	scheduler := services.NewBatchScheduler()
	notifier := &recordingNotifier{}
	depot := testDepot(t)

	allocator := newAllocator(store, board, stubPlanner{routeMin: 3}, notifier, depot)
	former := commands.NewFormBatchCommandHandler(
		fakeUoWFactory{store}, scheduler, board, allocator, testLogger())
	handler := commands.NewConfirmOrderCommandHandler(
		fakeOrderUoWFactory{store}, scheduler, former, depot, testLogger())

	return &confirmOrderFixture{
		store:     store,
		board:     board,
		scheduler: scheduler,
		notifier:  notifier,
		handler:   handler,
	}
}

func (f *confirmOrderFixture) confirmAt(t *testing.T, lat, lon float64) commands.ConfirmOrderCommand {
	t.Helper()
	location, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	cmd, err := commands.NewConfirmOrderCommand(kernel.NewUUID(), "chat-1", "some street 1", location, time.Time{})
	require.NoError(t, err)
	require.NoError(t, f.handler.Handle(t.Context(), cmd))
	return cmd
}

func TestConfirmOrderCommandHandler_QueuesOrder(t *testing.T) {
	f := newConfirmOrderFixture(t)

	// North-west of the depot.
	cmd := f.confirmAt(t, -31.40, -57.97)

	stored, ok := f.store.orders[cmd.OrderID()]
	require.True(t, ok)
	assert.Equal(t, order.Queued, stored.Status())
	assert.Equal(t, kernel.ZoneNO, stored.Zone())
	assert.Nil(t, stored.BatchID())
	assert.GreaterOrEqual(t, stored.Code().Int(), 0)
	assert.LessOrEqual(t, stored.Code().Int(), 999999)

	assert.Equal(t, 1, f.scheduler.QueueLengths()[kernel.ZoneNO])
}

func TestConfirmOrderCommandHandler_SizeTriggerFormsBatch(t *testing.T) {
	f := newConfirmOrderFixture(t)
	seedCourier(t, f.store, "Ana")

	var cmds []commands.ConfirmOrderCommand
	for range services.SizeThreshold {
		cmds = append(cmds, f.confirmAt(t, -31.40, -57.97))
	}

	t.Run("queue is drained into one batch", func(t *testing.T) {
		assert.Equal(t, 0, f.scheduler.QueueLengths()[kernel.ZoneNO])
		require.Len(t, f.store.batches, 1)
		assert.Len(t, f.store.batches[1].RemainingStops(), services.SizeThreshold)
	})

	t.Run("batch went straight out for delivery", func(t *testing.T) {
		for _, cmd := range cmds {
			stored := f.store.orders[cmd.OrderID()]
			assert.Equal(t, order.OutForDelivery, stored.Status())
			require.NotNil(t, stored.BatchID())
			assert.Equal(t, int64(1), *stored.BatchID())
		}
		require.Len(t, f.notifier.legs, 1)
		assert.Len(t, f.notifier.updates, services.SizeThreshold)
	})

	t.Run("orders in a different zone queue separately", func(t *testing.T) {
		f.confirmAt(t, -31.37, -57.95) // south-east of the depot
		assert.Equal(t, 1, f.scheduler.QueueLengths()[kernel.ZoneSE])
		assert.Len(t, f.store.batches, 1)
	})
}

func TestConfirmOrderCommandHandler_NoCourierLeavesBatchPending(t *testing.T) {
	f := newConfirmOrderFixture(t)

	for range services.SizeThreshold {
		f.confirmAt(t, -31.40, -57.97)
	}

	require.Len(t, f.store.batches, 1)
	assert.Nil(t, f.store.batches[1].CourierID())

	pendingID, ok := f.board.PopPending()
	require.True(t, ok)
	assert.Equal(t, int64(1), pendingID)
}

func TestConfirmOrderCommand_Validation(t *testing.T) {
	location, err := kernel.NewGeoPoint(-31.40, -57.97)
	require.NoError(t, err)

	_, err = commands.NewConfirmOrderCommand(kernel.NewUUID(), "", "some street 1", location, time.Time{})
	require.ErrorIs(t, err, commands.ErrCustomerRefIsRequired)

	_, err = commands.NewConfirmOrderCommand(kernel.NewUUID(), "chat-1", "", location, time.Time{})
	require.ErrorIs(t, err, commands.ErrAddressIsRequired)

	_, err = commands.NewConfirmOrderCommand(kernel.NewUUID(), "chat-1", "some street 1", kernel.GeoPoint{}, time.Time{})
	require.Error(t, err)

	_, err = commands.NewConfirmOrderCommand(kernel.UUID{}, "chat-1", "some street 1", location, time.Time{})
	require.Error(t, err)

	var notConstructed commands.ConfirmOrderCommand
	require.ErrorIs(t, notConstructed.Validate(), commands.ErrConfirmOrderCommandIsNotConstructed)
}
