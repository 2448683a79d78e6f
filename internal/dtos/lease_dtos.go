package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayware/leasing-service/internal/models"
)

type CreateLeaseRequest struct {
	TenantID  uuid.UUID  `json:"tenant_id" validate:"required"`
	UnitID    uuid.UUID  `json:"unit_id" validate:"required"`
	BedroomID *uuid.UUID `json:"bedroom_id,omitempty"`

	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`

	MonthlyRent     decimal.Decimal `json:"monthly_rent" validate:"required"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`

	// CoTenantIDs are Resident users to attach to the lease.
	CoTenantIDs []uuid.UUID `json:"co_tenant_ids,omitempty" validate:"omitempty,dive,required"`

	// Draft keeps the lease in DRAFT instead of activating immediately.
	Draft bool `json:"draft"`

	// SendCredentials triggers portal-invite delivery after activation.
	SendCredentials bool `json:"send_credentials"`
}

type UpdateLeaseRequest struct {
	StartDate       *time.Time       `json:"start_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	MonthlyRent     *decimal.Decimal `json:"monthly_rent,omitempty"`
	SecurityDeposit *decimal.Decimal `json:"security_deposit,omitempty"`

	// Convenience edits for the tenant's display name, applied to the
	// users row in the same transaction.
	TenantFirstName *string `json:"tenant_first_name,omitempty"`
	TenantLastName  *string `json:"tenant_last_name,omitempty"`
}

type LeaseResponse struct {
	Lease *models.Lease `json:"lease"`
}

type LeaseListResponse struct {
	Leases []*models.Lease `json:"leases"`
}
