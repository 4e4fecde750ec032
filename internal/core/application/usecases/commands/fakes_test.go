package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory stand-in for the database. Get and Update move
// aggregates through the Restore constructors, so handlers never share
// pointers with the store and an aborted handler leaves it untouched.
type fakeStore struct {
	mu          sync.Mutex
	orders      map[kernel.UUID]*order.Order
	couriers    map[kernel.UUID]*courier.Courier
	batches     map[int64]*batch.Batch
	nextBatchID int64

	begins  int
	commits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[kernel.UUID]*order.Order),
		couriers: make(map[kernel.UUID]*courier.Courier),
		batches:  make(map[int64]*batch.Batch),
	}
}

func copyOrder(o *order.Order) *order.Order {
	restored, err := order.RestoreOrder(
		o.ID(), o.CustomerRef(), o.Address(), o.Location(),
		o.Zone(), o.Status(), o.Code(), o.BatchID(), o.ConfirmedAt())
	if err != nil {
		panic(err)
	}
	return restored
}

func copyCourier(c *courier.Courier) *courier.Courier {
	restored, err := courier.RestoreCourier(
		c.ID(), c.Name(), c.Phone(), c.Status(), c.CurrentBatchID(), c.DistanceKm())
	if err != nil {
		panic(err)
	}
	return restored
}

func copyBatch(b *batch.Batch) *batch.Batch {
	restored, err := batch.RestoreBatch(
		b.ID(), b.Zone(), b.RemainingStops(), b.CourierID(), b.CreatedAt())
	if err != nil {
		panic(err)
	}
	return restored
}

type fakeOrderRepo struct{ store *fakeStore }

func (r fakeOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID()] = copyOrder(o)
	return nil
}

func (r fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID()] = copyOrder(o)
	return nil
}

func (r fakeOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderID", id)
	}
	return copyOrder(o), nil
}

func (r fakeOrderRepo) GetByBatch(_ context.Context, batchID int64) ([]*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*order.Order
	for _, o := range r.store.orders {
		if o.BatchID() != nil && *o.BatchID() == batchID {
			result = append(result, copyOrder(o))
		}
	}
	return result, nil
}

type fakeCourierRepo struct{ store *fakeStore }

func (r fakeCourierRepo) Add(_ context.Context, c *courier.Courier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.couriers[c.ID()] = copyCourier(c)
	return nil
}

func (r fakeCourierRepo) Update(_ context.Context, c *courier.Courier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.couriers[c.ID()] = copyCourier(c)
	return nil
}

func (r fakeCourierRepo) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.couriers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("courierID", id)
	}
	return copyCourier(c), nil
}

func (r fakeCourierRepo) GetAllIdle(_ context.Context) ([]*courier.Courier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var idle []*courier.Courier
	for _, c := range r.store.couriers {
		if c.IsIdle() {
			idle = append(idle, copyCourier(c))
		}
	}
	return idle, nil
}

type fakeBatchRepo struct{ store *fakeStore }

func (r fakeBatchRepo) Add(_ context.Context, b *batch.Batch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.batches[b.ID()] = copyBatch(b)
	return nil
}

func (r fakeBatchRepo) Update(_ context.Context, b *batch.Batch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.batches[b.ID()] = copyBatch(b)
	return nil
}

func (r fakeBatchRepo) Get(_ context.Context, id int64) (*batch.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.batches[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("batchID", id)
	}
	return copyBatch(b), nil
}

func (r fakeBatchRepo) NextID(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextBatchID++
	return r.store.nextBatchID, nil
}

type fakeUoW struct{ store *fakeStore }

func (u fakeUoW) Begin(_ context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.begins++
	return nil
}

func (u fakeUoW) Commit(_ context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.commits++
	return nil
}

func (u fakeUoW) Rollback(_ context.Context) error           { return nil }
func (u fakeUoW) OrderRepository() ports.OrderRepository     { return fakeOrderRepo{u.store} }
func (u fakeUoW) CourierRepository() ports.CourierRepository { return fakeCourierRepo{u.store} }
func (u fakeUoW) BatchRepository() ports.BatchRepository     { return fakeBatchRepo{u.store} }

type fakeUoWFactory struct{ store *fakeStore }

func (f fakeUoWFactory) Create() commands.UoW { return fakeUoW{f.store} }

type fakeOrderUoWFactory struct{ store *fakeStore }

func (f fakeOrderUoWFactory) Create() commands.OrderUoW { return fakeUoW{f.store} }

type fakeCourierUoWFactory struct{ store *fakeStore }

func (f fakeCourierUoWFactory) Create() commands.CourierUoW { return fakeUoW{f.store} }

// stubPlanner orders stops greedily by straight-line distance and yields
// configurable road routes.
type stubPlanner struct {
	routeKm  float64
	routeMin float64
	routeErr error
	planErr  error
}

func (p stubPlanner) ComputeRoute(_ context.Context, origin, destination kernel.GeoPoint) (ports.Route, error) {
	if p.routeErr != nil {
		return ports.Route{}, p.routeErr
	}
	km := p.routeKm
	if km == 0 {
		km, _ = origin.Haversine(destination)
	}
	return ports.Route{DistanceKm: km, TimeMin: p.routeMin}, nil
}

func (p stubPlanner) ComputeVisitOrder(
	_ context.Context,
	origin kernel.GeoPoint,
	stops []kernel.GeoPoint,
) (ports.VisitPlan, error) {
	if p.planErr != nil {
		return ports.VisitPlan{}, p.planErr
	}

	remaining := make([]int, len(stops))
	for i := range remaining {
		remaining[i] = i
	}

	plan := ports.VisitPlan{}
	current := origin
	for len(remaining) > 0 {
		best := 0
		bestKm, _ := current.Haversine(stops[remaining[0]])
		for i, stopIndex := range remaining[1:] {
			km, _ := current.Haversine(stops[stopIndex])
			if km < bestKm {
				best = i + 1
				bestKm = km
			}
		}
		chosen := remaining[best]
		plan.Order = append(plan.Order, chosen)
		plan.DistanceKm += bestKm
		current = stops[chosen]
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return plan, nil
}

// recordingNotifier captures every outbound message.
type recordingNotifier struct {
	mu        sync.Mutex
	legs      []ports.CourierLeg
	updates   []ports.CustomerUpdate
	summaries []ports.BatchSummary
	ratings   []ports.RatingRequest
	err       error
}

func (n *recordingNotifier) NotifyCourier(_ context.Context, leg ports.CourierLeg) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.legs = append(n.legs, leg)
	return n.err
}

func (n *recordingNotifier) NotifyCustomer(_ context.Context, update ports.CustomerUpdate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, update)
	return n.err
}

func (n *recordingNotifier) NotifyBatchComplete(_ context.Context, summary ports.BatchSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, summary)
	return n.err
}

func (n *recordingNotifier) RequestRating(_ context.Context, request ports.RatingRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ratings = append(n.ratings, request)
	return n.err
}
