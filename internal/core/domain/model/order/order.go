package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrCustomerRefIsRequired is returned when the customer reference is empty.
	ErrCustomerRefIsRequired = errs.NewValueIsRequiredError("customer reference")

	// ErrAddressIsRequired is returned when the delivery address is empty.
	ErrAddressIsRequired = errs.NewValueIsRequiredError("address")

	// ErrConfirmedAtIsRequired is returned when the confirmation timestamp is zero.
	ErrConfirmedAtIsRequired = errs.NewValueIsRequiredError("confirmedAt")
)

// Order is the aggregate root for a confirmed delivery order. It carries the
// delivery destination, the verification code the courier must present, and
// the lifecycle status driven by the scheduler and the delivery sequencer.
//
// Invariants:
//   - created only via NewOrder / RestoreOrder
//   - status transitions are forward-only (see Status)
//   - a batch id is set exactly once, when the scheduler batches the order
//   - the verification code never changes after creation
type Order struct {
	id          kernel.UUID
	customerRef string
	address     string
	location    kernel.GeoPoint
	zone        kernel.Zone
	status      Status
	code        kernel.VerificationCode
	batchID     *int64
	confirmedAt time.Time

	isConstructed bool
}

// NewOrder creates a confirmed order awaiting zone queueing.
// The verification code is fixed here for the order's whole lifetime.
func NewOrder(
	id kernel.UUID,
	customerRef string,
	address string,
	location kernel.GeoPoint,
	code kernel.VerificationCode,
	confirmedAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Confirmed,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerRef(customerRef),
		o.setAddress(address),
		o.setLocation(location),
		o.setConfirmedAt(confirmedAt),
	); err != nil {
		return nil, err
	}

	o.code = code
	return o, nil
}

// RestoreOrder reconstructs an order from persistence without replaying its
// lifecycle. The stored status and zone are trusted after validation.
func RestoreOrder(
	id kernel.UUID,
	customerRef string,
	address string,
	location kernel.GeoPoint,
	zone kernel.Zone,
	status Status,
	code kernel.VerificationCode,
	batchID *int64,
	confirmedAt time.Time,
) (*Order, error) {
	o, err := NewOrder(id, customerRef, address, location, code, confirmedAt)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}

	if zone != "" && !zone.Valid() {
		return nil, errs.NewValueIsInvalidError("zone")
	}

	o.zone = zone
	o.status = status
	o.batchID = batchID
	return o, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerRef returns the collaborator-side reference for the customer
// (the chat or contact identifier notifications are addressed to).
func (o *Order) CustomerRef() string {
	return o.customerRef
}

// Address returns the delivery address text.
func (o *Order) Address() string {
	return o.address
}

// Location returns the delivery coordinates.
func (o *Order) Location() kernel.GeoPoint {
	return o.location
}

// Zone returns the quadrant zone the order was queued into.
// Empty until the order is queued.
func (o *Order) Zone() kernel.Zone {
	return o.zone
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Code returns the delivery verification code.
func (o *Order) Code() kernel.VerificationCode {
	return o.code
}

// BatchID returns the id of the batch the order belongs to, or nil.
func (o *Order) BatchID() *int64 {
	return o.batchID
}

// ConfirmedAt returns the confirmation timestamp.
func (o *Order) ConfirmedAt() time.Time {
	return o.confirmedAt
}

// MarkQueued records the order's zone and moves it to Queued.
func (o *Order) MarkQueued(zone kernel.Zone) error {
	if !zone.Valid() {
		return errs.NewValueIsInvalidError("zone")
	}

	newStatus, err := o.status.Queue()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.zone = zone
	return nil
}

// MarkBatched binds the order to a batch and moves it to Batched.
func (o *Order) MarkBatched(batchID int64) error {
	if batchID <= 0 {
		return errs.NewValueIsInvalidError("batchID")
	}

	newStatus, err := o.status.Batch()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.batchID = &batchID
	return nil
}

// MarkOutForDelivery moves the order to OutForDelivery when its batch is
// allocated to a courier.
func (o *Order) MarkOutForDelivery() error {
	newStatus, err := o.status.StartDelivery()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// MarkDelivered moves the order to its final Delivered state.
func (o *Order) MarkDelivered() error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerRef(customerRef string) error {
	if customerRef == "" {
		return ErrCustomerRefIsRequired
	}
	o.customerRef = customerRef
	return nil
}

func (o *Order) setAddress(address string) error {
	if address == "" {
		return ErrAddressIsRequired
	}
	o.address = address
	return nil
}

func (o *Order) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setConfirmedAt(confirmedAt time.Time) error {
	if confirmedAt.IsZero() {
		return ErrConfirmedAtIsRequired
	}
	o.confirmedAt = confirmedAt
	return nil
}
