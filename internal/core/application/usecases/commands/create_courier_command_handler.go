package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
)

// CreateCourierCommandHandler persists new courier registrations.
type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewCreateCourierCommandHandler creates a handler for courier registration.
func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle creates a new courier aggregate and persists it within a
// transaction, rolling back on any error.
func (h *CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
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

	courierEntity, err := courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Phone())
	if err != nil {
		return err
	}

	if err = uow.CourierRepository().Add(ctx, courierEntity); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
