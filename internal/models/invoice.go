package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatusType string

const (
	InvoiceStatusDraft   InvoiceStatusType = "draft"
	InvoiceStatusSent    InvoiceStatusType = "sent"
	InvoiceStatusPartial InvoiceStatusType = "partial"
	InvoiceStatusPaid    InvoiceStatusType = "paid"
	InvoiceStatusOverdue InvoiceStatusType = "overdue"
	InvoiceStatusVoid    InvoiceStatusType = "void"
)

type InvoiceCategoryType string

const (
	InvoiceCategoryRent    InvoiceCategoryType = "RENT"
	InvoiceCategoryService InvoiceCategoryType = "SERVICE"
)

const DepositDescription = "Security Deposit"

// Invoice bills one tenant for one lease and one period. An invoice is
// either a rent invoice (ServiceFees zero) or a service/deposit invoice
// (Rent zero), never both. The idempotency key for recurring generation
// is (LeaseID, Month, category=RENT).
type Invoice struct {
	ID        uuid.UUID `json:"id"`
	InvoiceNo string    `json:"invoice_no"`

	// TenantID is the billable party after Resident→parent resolution.
	TenantID uuid.UUID `json:"tenant_id"`
	UnitID   uuid.UUID `json:"unit_id"`
	LeaseID  uuid.UUID `json:"lease_id"`

	Category    InvoiceCategoryType `json:"category"`
	Description string              `json:"description,omitempty"`

	// Month is the human-readable period key, e.g. "March 2026".
	Month string `json:"month"`

	Rent        decimal.Decimal `json:"rent"`
	ServiceFees decimal.Decimal `json:"service_fees"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	BalanceDue  decimal.Decimal `json:"balance_due"`

	Status  InvoiceStatusType `json:"status"`
	DueDate time.Time         `json:"due_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
