// Package orderrepo provides data transfer objects and mapping functions
// for order persistence.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order
// aggregates. Coordinates are stored as plain doubles; the zone column is
// empty until the order is queued.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerRef string    `gorm:"type:varchar(255);not null"`
	Address     string    `gorm:"type:varchar(255);not null"`
	Lat         float64   `gorm:"type:double precision;not null"`
	Lon         float64   `gorm:"type:double precision;not null"`
	Zone        string    `gorm:"type:varchar(2);index"`
	Status      int       `gorm:"type:smallint;not null;index"`
	Code        int       `gorm:"type:int;not null"`
	BatchID     *int64    `gorm:"type:bigint;index"`
	ConfirmedAt time.Time `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:          aggregate.ID().Bytes(),
		CustomerRef: aggregate.CustomerRef(),
		Address:     aggregate.Address(),
		Lat:         aggregate.Location().Lat(),
		Lon:         aggregate.Location().Lon(),
		Zone:        string(aggregate.Zone()),
		Status:      int(aggregate.Status()),
		Code:        aggregate.Code().Int(),
		BatchID:     aggregate.BatchID(),
		ConfirmedAt: aggregate.ConfirmedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lon)
	if err != nil {
		return nil, err
	}

	code, err := kernel.NewVerificationCode(dto.Code)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		dto.CustomerRef,
		dto.Address,
		location,
		kernel.Zone(dto.Zone),
		order.Status(dto.Status),
		code,
		dto.BatchID,
		dto.ConfirmedAt,
	)
}
