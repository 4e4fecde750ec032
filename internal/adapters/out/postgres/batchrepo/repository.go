package batchrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormBatchRepository implements ports.BatchRepository using GORM.
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GORM batch repository.
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Add saves a new batch and its stops to the database.
func (r *GormBatchRepository) Add(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves an existing batch. The stop rows are replaced wholesale:
// GORM's association save never deletes rows, and confirmed stops must
// disappear.
func (r *GormBatchRepository) Update(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	db := r.db.WithContext(ctx)
	if err := db.Where("batch_id = ?", dto.ID).Delete(&BatchStopDTO{}).Error; err != nil {
		return err
	}

	stops := dto.Stops
	dto.Stops = nil
	result := db.Save(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if len(stops) > 0 {
		if err := db.Create(&stops).Error; err != nil {
			return err
		}
	}

	return nil
}

// Get retrieves a batch by ID with its remaining stops.
func (r *GormBatchRepository) Get(ctx context.Context, id int64) (*batch.Batch, error) {
	var dto BatchDTO
	if err := r.db.WithContext(ctx).Preload("Stops").First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

// NextID reserves the next batch identifier from the batches sequence.
func (r *GormBatchRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).
		Raw(`SELECT nextval(pg_get_serial_sequence('batches', 'id'))`).
		Scan(&id).Error
	if err != nil {
		return 0, err
	}

	return id, nil
}
