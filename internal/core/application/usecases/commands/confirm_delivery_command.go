package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrConfirmDeliveryCommandIsNotConstructed = errors.New(
	"ConfirmDeliveryCommand must be created via NewConfirmDeliveryCommand constructor",
)

// ConfirmDeliveryCommand represents a courier confirming a hand-off by
// presenting the verification code the customer received.
type ConfirmDeliveryCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	orderID   kernel.UUID
	code      int

	guard guard.ConstructorGuard
}

// NewConfirmDeliveryCommand creates a command to confirm one delivery.
// The code is checked against the order's stored code by the handler, not
// here, so a mistyped code fails with a mismatch rather than a validation
// error.
func NewConfirmDeliveryCommand(courierID, orderID kernel.UUID, code int) (ConfirmDeliveryCommand, error) {
	if err := errors.Join(courierID.Validate(), orderID.Validate()); err != nil {
		return ConfirmDeliveryCommand{}, err
	}

	return ConfirmDeliveryCommand{
		courierID: courierID,
		orderID:   orderID,
		code:      code,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveryCommandIsNotConstructed)
}

// CourierID returns the courier reporting the hand-off.
func (c ConfirmDeliveryCommand) CourierID() kernel.UUID {
	return c.courierID
}

// OrderID returns the order being confirmed.
func (c ConfirmDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Code returns the verification code the courier presented.
func (c ConfirmDeliveryCommand) Code() int {
	return c.code
}
