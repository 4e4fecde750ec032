// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS
// architecture. Queries bypass the aggregates and read optimized models
// straight from the database.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetAllCouriersQueryIsNotConstructed = errors.New(
	"GetAllCouriersQuery must be created via NewGetAllCouriersQuery constructor",
)

// GetAllCouriersQuery retrieves every courier on the roster with their
// availability and accumulated distance.
type GetAllCouriersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAllCouriersQuery creates a query to retrieve all couriers.
func NewGetAllCouriersQuery() GetAllCouriersQuery {
	return GetAllCouriersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAllCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetAllCouriersQueryIsNotConstructed)
}

// GetAllCouriersQueryResponse is the courier read model.
type GetAllCouriersQueryResponse struct {
	ID             kernel.UUID
	Name           string
	Phone          string
	Status         string
	CurrentBatchID *int64
	DistanceKm     float64
}
