package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayware/leasing-service/internal/models"
)

type CreateInvoiceRequest struct {
	LeaseID     uuid.UUID                  `json:"lease_id" validate:"required"`
	Category    models.InvoiceCategoryType `json:"category" validate:"required,oneof=RENT SERVICE"`
	Description string                     `json:"description,omitempty"`
	Amount      decimal.Decimal            `json:"amount" validate:"required"`
	DueDate     time.Time                  `json:"due_date" validate:"required"`
}

type InvoiceResponse struct {
	Invoice *models.Invoice `json:"invoice"`
}

type InvoiceListResponse struct {
	Invoices []*models.Invoice `json:"invoices"`
}

type RentRunResponse struct {
	Run  *models.RentRun      `json:"run"`
	Logs []*models.RentRunLog `json:"logs,omitempty"`
}

type RentRunListResponse struct {
	Runs []*models.RentRun `json:"runs"`
}
