// Package courierrepo provides data transfer objects and mapping functions
// for courier persistence. It implements the repository pattern for the
// courier aggregate, converting between domain entities and database rows.
package courierrepo

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier
// aggregates. The phone column holds the digits-only form, which the
// by-phone lookup relies on.
type CourierDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Phone          string    `gorm:"type:varchar(32);not null;index"`
	Status         int       `gorm:"type:smallint;not null;index"`
	CurrentBatchID *int64    `gorm:"type:bigint"`
	DistanceKm     float64   `gorm:"type:double precision;not null"`
}

// TableName overrides GORM's default naming to use "couriers".
func (CourierDTO) TableName() string {
	return "couriers"
}

func fromDomain(aggregate *courier.Courier) CourierDTO {
	return CourierDTO{
		ID:             aggregate.ID().Bytes(),
		Name:           aggregate.Name(),
		Phone:          aggregate.Phone(),
		Status:         int(aggregate.Status()),
		CurrentBatchID: aggregate.CurrentBatchID(),
		DistanceKm:     aggregate.DistanceKm(),
	}
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return courier.RestoreCourier(
		id,
		dto.Name,
		dto.Phone,
		courier.Status(dto.Status),
		dto.CurrentBatchID,
		dto.DistanceKm,
	)
}
