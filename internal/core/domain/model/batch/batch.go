package batch

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// MaxOrders is the largest number of orders a single batch may carry.
const MaxOrders = 7

var (
	// ErrBatchIsNotConstructed is returned when a Batch instance was not
	// created through NewBatch or RestoreBatch.
	ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch constructor")

	// ErrBatchIsEmpty is returned when a batch is created without orders.
	ErrBatchIsEmpty = errs.NewValueIsRequiredError("orderIDs")

	// ErrBatchIsFull is returned when a batch is created with more than
	// MaxOrders orders.
	ErrBatchIsFull = errs.NewValueIsInvalidError("orderIDs")

	// ErrCourierAlreadyAssigned is returned when a courier is assigned to a
	// batch that already has one.
	ErrCourierAlreadyAssigned = errors.New("batch already has a courier assigned")

	// ErrBatchIsComplete is returned when a delivery operation is attempted
	// on a batch with no remaining stops.
	ErrBatchIsComplete = errors.New("batch has no remaining stops")

	// ErrInvalidPermutation is returned when Reorder receives a sequence
	// that is not a permutation of the current stops.
	ErrInvalidPermutation = errs.NewValueIsInvalidError("stops")

	// ErrCreatedAtIsRequired is returned when the creation timestamp is zero.
	ErrCreatedAtIsRequired = errs.NewValueIsRequiredError("createdAt")
)

// Batch is the aggregate root for a group of orders dispatched together
// inside one zone. The stop list is fixed at creation and only shrinks as
// deliveries are confirmed; Reorder may rearrange it but never add or drop
// a stop.
type Batch struct {
	id        int64
	zone      kernel.Zone
	stops     []kernel.UUID
	courierID *kernel.UUID
	createdAt time.Time

	isConstructed bool
}

// NewBatch creates a batch over the given orders. The stop order is taken
// as given until a Reorder is applied.
func NewBatch(id int64, zone kernel.Zone, orderIDs []kernel.UUID, createdAt time.Time) (*Batch, error) {
	if id <= 0 {
		return nil, errs.NewValueIsInvalidError("id")
	}
	if !zone.Valid() {
		return nil, errs.NewValueIsInvalidError("zone")
	}
	if len(orderIDs) == 0 {
		return nil, ErrBatchIsEmpty
	}
	if len(orderIDs) > MaxOrders {
		return nil, ErrBatchIsFull
	}
	if createdAt.IsZero() {
		return nil, ErrCreatedAtIsRequired
	}

	for _, orderID := range orderIDs {
		if err := orderID.Validate(); err != nil {
			return nil, err
		}
	}

	stops := make([]kernel.UUID, len(orderIDs))
	copy(stops, orderIDs)

	return &Batch{
		id:            id,
		zone:          zone,
		stops:         stops,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// RestoreBatch reconstructs a batch from persistence, including its courier
// binding. A complete batch restores with an empty stop list.
func RestoreBatch(
	id int64,
	zone kernel.Zone,
	orderIDs []kernel.UUID,
	courierID *kernel.UUID,
	createdAt time.Time,
) (*Batch, error) {
	if id <= 0 {
		return nil, errs.NewValueIsInvalidError("id")
	}
	if !zone.Valid() {
		return nil, errs.NewValueIsInvalidError("zone")
	}
	if len(orderIDs) > MaxOrders {
		return nil, ErrBatchIsFull
	}
	if createdAt.IsZero() {
		return nil, ErrCreatedAtIsRequired
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
	}

	stops := make([]kernel.UUID, len(orderIDs))
	copy(stops, orderIDs)

	return &Batch{
		id:            id,
		zone:          zone,
		stops:         stops,
		courierID:     courierID,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Batch was created through a constructor.
func (b *Batch) Validate() error {
	if b == nil || !b.isConstructed {
		return ErrBatchIsNotConstructed
	}

	return nil
}

// IsEqual compares two batches by identifier.
func (b *Batch) IsEqual(other *Batch) bool {
	return other != nil && b.id == other.id
}

// ID returns the batch identifier.
func (b *Batch) ID() int64 {
	return b.id
}

// Zone returns the zone the batch was formed from.
func (b *Batch) Zone() kernel.Zone {
	return b.zone
}

// CourierID returns the id of the courier carrying the batch, or nil when
// the batch is still awaiting allocation.
func (b *Batch) CourierID() *kernel.UUID {
	return b.courierID
}

// CreatedAt returns the batch creation timestamp.
func (b *Batch) CreatedAt() time.Time {
	return b.createdAt
}

// RemainingStops returns a copy of the stops still awaiting delivery,
// in visit order.
func (b *Batch) RemainingStops() []kernel.UUID {
	stops := make([]kernel.UUID, len(b.stops))
	copy(stops, b.stops)
	return stops
}

// IsComplete reports whether every stop has been delivered.
func (b *Batch) IsComplete() bool {
	return len(b.stops) == 0
}

// NextStop returns the order id of the next stop to visit.
func (b *Batch) NextStop() (kernel.UUID, error) {
	if b.IsComplete() {
		return kernel.UUID{}, ErrBatchIsComplete
	}

	return b.stops[0], nil
}

// AssignCourier binds the batch to a courier. A batch is bound at most once.
func (b *Batch) AssignCourier(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if b.courierID != nil {
		return ErrCourierAlreadyAssigned
	}

	b.courierID = &courierID
	return nil
}

// Reorder replaces the visit order with the given sequence, which must be a
// permutation of the current remaining stops.
func (b *Batch) Reorder(stops []kernel.UUID) error {
	if len(stops) != len(b.stops) {
		return ErrInvalidPermutation
	}

	seen := make(map[kernel.UUID]bool, len(b.stops))
	for _, stop := range b.stops {
		seen[stop] = true
	}
	for _, stop := range stops {
		if !seen[stop] {
			return ErrInvalidPermutation
		}
		delete(seen, stop)
	}

	ordered := make([]kernel.UUID, len(stops))
	copy(ordered, stops)
	b.stops = ordered
	return nil
}

// RemoveOrder drops a delivered stop from the batch.
func (b *Batch) RemoveOrder(orderID kernel.UUID) error {
	for i, stop := range b.stops {
		if stop.IsEqual(orderID) {
			b.stops = append(b.stops[:i], b.stops[i+1:]...)
			return nil
		}
	}

	return errs.NewObjectNotFoundError("orderID", orderID)
}
