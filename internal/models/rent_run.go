package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RentRunStatusType string

const (
	RentRunStatusPending   RentRunStatusType = "Pending"
	RentRunStatusCompleted RentRunStatusType = "Completed"
	RentRunStatusFailed    RentRunStatusType = "Failed"
)

type RentRunLogStatusType string

const (
	RentRunLogSuccess RentRunLogStatusType = "Success"
	RentRunLogSkipped RentRunLogStatusType = "Skipped"
	RentRunLogError   RentRunLogStatusType = "Error"
)

// RentRun is the audit record of one execution of the recurring invoice
// generator.
type RentRun struct {
	ID           uuid.UUID         `json:"id"`
	Month        string            `json:"month"`
	Status       RentRunStatusType `json:"status"`
	CreatedCount int               `json:"created_count"`
	SkippedCount int               `json:"skipped_count"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RentRunLog records the outcome for a single lease within a RentRun.
type RentRunLog struct {
	ID        uuid.UUID            `json:"id"`
	RunID     uuid.UUID            `json:"run_id"`
	LeaseID   uuid.UUID            `json:"lease_id"`
	Status    RentRunLogStatusType `json:"status"`
	Message   string               `json:"message"`
	CreatedAt time.Time            `json:"created_at"`
}
