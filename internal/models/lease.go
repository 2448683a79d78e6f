package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaseStatusType string

const (
	LeaseStatusDraft   LeaseStatusType = "DRAFT"
	LeaseStatusActive  LeaseStatusType = "Active"
	LeaseStatusExpired LeaseStatusType = "Expired"
	LeaseStatusMoved   LeaseStatusType = "Moved"
)

type LeaseTypeType string

const (
	LeaseTypeFullUnit LeaseTypeType = "FULL_UNIT"
	LeaseTypeBedroom  LeaseTypeType = "BEDROOM"
)

// Lease is the contract between a billable tenant and a unit, or a single
// bedroom of it when BedroomID is set.
type Lease struct {
	Versioned

	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	UnitID    uuid.UUID  `json:"unit_id"`
	BedroomID *uuid.UUID `json:"bedroom_id,omitempty"`

	Status    LeaseStatusType `json:"status"`
	LeaseType LeaseTypeType   `json:"lease_type"`

	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`

	// TenantType is denormalized from the users row by list queries that
	// need to discriminate company vs individual leases without an extra
	// round-trip. It is never written back.
	TenantType TenantTypeType `json:"tenant_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lease) GetID() string { return l.ID.String() }

func (l *Lease) IsFullUnit() bool { return l.BedroomID == nil }

// IsTerminal reports whether the lease can never return to Active.
func (l *Lease) IsTerminal() bool {
	return l.Status == LeaseStatusExpired || l.Status == LeaseStatusMoved
}
