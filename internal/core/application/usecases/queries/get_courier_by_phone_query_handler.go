package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCourierByPhoneQueryHandler resolves couriers from phone fragments,
// the way a courier identifies themselves from a messaging channel.
type GetCourierByPhoneQueryHandler struct {
	db *gorm.DB
}

// NewGetCourierByPhoneQueryHandler creates a handler for by-phone lookups.
func NewGetCourierByPhoneQueryHandler(db *gorm.DB) GetCourierByPhoneQueryHandler {
	return GetCourierByPhoneQueryHandler{db: db}
}

// Handle returns the courier whose number ends with the query's digits.
// When several match, the longest-serving name order decides; in practice
// fragments are full local numbers and match one courier.
func (h GetCourierByPhoneQueryHandler) Handle(
	ctx context.Context,
	query GetCourierByPhoneQuery,
) (GetAllCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAllCouriersQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			phone,
			status,
			current_batch_id,
			distance_km
		FROM couriers
		WHERE phone LIKE '%' || ?
		ORDER BY name
		LIMIT 1
	`, query.Digits()).Row()

	var response GetAllCouriersQueryResponse
	var id uuid.UUID
	var status int

	err := row.Scan(
		&id,
		&response.Name,
		&response.Phone,
		&status,
		&response.CurrentBatchID,
		&response.DistanceKm,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetAllCouriersQueryResponse{}, errs.NewObjectNotFoundError("phone", query.Digits())
	}
	if err != nil {
		return GetAllCouriersQueryResponse{}, err
	}

	courierID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetAllCouriersQueryResponse{}, err
	}
	response.ID = courierID
	response.Status = courier.Status(status).String()

	return response, nil
}
