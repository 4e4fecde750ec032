// Package batchrepo provides data transfer objects and mapping functions
// for batch persistence. A batch row owns an ordered set of stop rows; the
// stop list shrinks as deliveries are confirmed.
package batchrepo

import (
	"sort"
	"time"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BatchDTO represents the database structure for persisting batch
// aggregates.
type BatchDTO struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Zone      string         `gorm:"type:varchar(2);not null;index"`
	CourierID *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedAt time.Time      `gorm:"not null"`
	Stops     []BatchStopDTO `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "batches".
func (BatchDTO) TableName() string {
	return "batches"
}

// BatchStopDTO is one remaining stop of a batch. Position is the visit
// order within the batch.
type BatchStopDTO struct {
	BatchID  int64     `gorm:"primaryKey"`
	Position int       `gorm:"primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName overrides GORM's default naming to use "batch_stops".
func (BatchStopDTO) TableName() string {
	return "batch_stops"
}

func fromDomain(aggregate *batch.Batch) BatchDTO {
	var courierID *uuid.UUID
	if aggregate.CourierID() != nil {
		raw := aggregate.CourierID().Bytes()
		courierID = &raw
	}

	stops := aggregate.RemainingStops()
	stopDTOs := make([]BatchStopDTO, 0, len(stops))
	for i, stopID := range stops {
		stopDTOs = append(stopDTOs, BatchStopDTO{
			BatchID:  aggregate.ID(),
			Position: i,
			OrderID:  stopID.Bytes(),
		})
	}

	return BatchDTO{
		ID:        aggregate.ID(),
		Zone:      string(aggregate.Zone()),
		CourierID: courierID,
		CreatedAt: aggregate.CreatedAt(),
		Stops:     stopDTOs,
	}
}

func toDomain(dto BatchDTO) (*batch.Batch, error) {
	sort.Slice(dto.Stops, func(i, j int) bool {
		return dto.Stops[i].Position < dto.Stops[j].Position
	})

	stops := make([]kernel.UUID, 0, len(dto.Stops))
	for _, stop := range dto.Stops {
		stopID, err := kernel.UUIDFromBytes(stop.OrderID[:])
		if err != nil {
			return nil, err
		}
		stops = append(stops, stopID)
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		id, err := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if err != nil {
			return nil, err
		}
		courierID = &id
	}

	return batch.RestoreBatch(dto.ID, kernel.Zone(dto.Zone), stops, courierID, dto.CreatedAt)
}
