package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrConfirmOrderCommandIsNotConstructed = errors.New(
		"ConfirmOrderCommand must be created via NewConfirmOrderCommand constructor",
	)
	ErrCustomerRefIsRequired = errors.New("customer reference is required")
	ErrAddressIsRequired     = errors.New("address is required")
)

// ConfirmOrderCommand represents a confirmed customer order entering the
// dispatch pipeline: it will be zoned, queued, and eventually batched.
//
// Example:
//
//	point, _ := kernel.NewGeoPoint(-31.39, -57.95)
//	cmd, err := NewConfirmOrderCommand(kernel.NewUUID(), "chat-123", "Av. Artigas 1234", point, time.Now())
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to confirm order: %w", err)
//	}
type ConfirmOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	customerRef string
	address     string
	location    kernel.GeoPoint
	confirmedAt time.Time

	guard guard.ConstructorGuard
}

// NewConfirmOrderCommand creates a command to confirm a customer order. The
// order id comes from the upstream collaborator that confirmed the order. A
// zero confirmedAt falls back to the current time.
func NewConfirmOrderCommand(
	orderID kernel.UUID,
	customerRef string,
	address string,
	location kernel.GeoPoint,
	confirmedAt time.Time,
) (ConfirmOrderCommand, error) {
	command := ConfirmOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if confirmedAt.IsZero() {
		confirmedAt = time.Now()
	}
	command.confirmedAt = confirmedAt

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCustomerRef(customerRef),
		command.setAddress(address),
		command.setLocation(location),
	); err != nil {
		return ConfirmOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmOrderCommand) Validate() error {
	return c.guard.Validate(ErrConfirmOrderCommandIsNotConstructed)
}

// OrderID returns the generated order ID.
func (c ConfirmOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerRef returns the customer contact reference.
func (c ConfirmOrderCommand) CustomerRef() string {
	return c.customerRef
}

// Address returns the delivery address text.
func (c ConfirmOrderCommand) Address() string {
	return c.address
}

// Location returns the delivery coordinates.
func (c ConfirmOrderCommand) Location() kernel.GeoPoint {
	return c.location
}

// ConfirmedAt returns when the upstream collaborator confirmed the order.
func (c ConfirmOrderCommand) ConfirmedAt() time.Time {
	return c.confirmedAt
}

func (c *ConfirmOrderCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *ConfirmOrderCommand) setCustomerRef(customerRef string) error {
	if customerRef == "" {
		return ErrCustomerRefIsRequired
	}

	c.customerRef = customerRef
	return nil
}

func (c *ConfirmOrderCommand) setAddress(address string) error {
	if address == "" {
		return ErrAddressIsRequired
	}

	c.address = address
	return nil
}

func (c *ConfirmOrderCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}
