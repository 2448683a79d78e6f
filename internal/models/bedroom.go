package models

import (
	"time"

	"github.com/google/uuid"
)

type BedroomStatusType string

const (
	BedroomStatusVacant   BedroomStatusType = "Vacant"
	BedroomStatusOccupied BedroomStatusType = "Occupied"
)

// Bedroom is a sub-unit of a Unit; it never exists on its own.
type Bedroom struct {
	ID            uuid.UUID         `json:"id"`
	UnitID        uuid.UUID         `json:"unit_id"`
	BedroomNumber string            `json:"bedroom_number"`
	Status        BedroomStatusType `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}
