package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID           uuid.UUID `json:"id"`
	PropertyName string    `json:"property_name"`
	CivicNumber  string    `json:"civic_number"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ZipCode      string    `json:"zip_code"`
	CreatedAt    time.Time `json:"created_at"`
}
