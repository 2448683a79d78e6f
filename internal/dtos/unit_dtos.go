package dtos

import (
	"github.com/google/uuid"

	"github.com/stayware/leasing-service/internal/models"
)

type CreateUnitRequest struct {
	PropertyID   uuid.UUID             `json:"property_id" validate:"required"`
	UnitNumber   string                `json:"unit_number" validate:"required,min=1"`
	RentalMode   models.RentalModeType `json:"rental_mode" validate:"required,oneof=FULL_UNIT BEDROOM_WISE"`
	BedroomCount int                   `json:"bedroom_count" validate:"gte=0,lte=20"`
}

type UpdateUnitRequest struct {
	UnitNumber *string                `json:"unit_number,omitempty" validate:"omitempty,min=1"`
	RentalMode *models.RentalModeType `json:"rental_mode,omitempty" validate:"omitempty,oneof=FULL_UNIT BEDROOM_WISE"`
}

type SetUnitMaintenanceRequest struct {
	UnderMaintenance bool `json:"under_maintenance"`
}

type UnitResponse struct {
	Unit     *models.Unit      `json:"unit"`
	Bedrooms []*models.Bedroom `json:"bedrooms,omitempty"`
}

type UnitListResponse struct {
	Units []*models.Unit `json:"units"`
}
