package models

import (
	"time"

	"github.com/google/uuid"
)

type RentalModeType string

const (
	RentalModeFullUnit    RentalModeType = "FULL_UNIT"
	RentalModeBedroomWise RentalModeType = "BEDROOM_WISE"
)

type UnitStatusType string

const (
	UnitStatusVacant           UnitStatusType = "Vacant"
	UnitStatusOccupied         UnitStatusType = "Occupied"
	UnitStatusFullyBooked      UnitStatusType = "Fully Booked"
	UnitStatusUnderMaintenance UnitStatusType = "Under Maintenance"
)

// Unit is a rentable space inside a Property. Its status is a denormalized
// cache of the bedroom statuses and the set of Active leases; every mutation
// of either recomputes it inside the same transaction.
type Unit struct {
	Versioned

	ID           uuid.UUID      `json:"id"`
	PropertyID   uuid.UUID      `json:"property_id"`
	UnitNumber   string         `json:"unit_number"`
	RentalMode   RentalModeType `json:"rental_mode"`
	Status       UnitStatusType `json:"status"`
	BedroomCount int            `json:"bedroom_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (u *Unit) GetID() string { return u.ID.String() }
