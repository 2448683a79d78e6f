package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/stayware/leasing-service/internal/dtos"
	"github.com/stayware/leasing-service/internal/services"
	"github.com/stayware/leasing-service/internal/utils"
)

type InvoicesController struct {
	invoiceService *services.InvoiceService
	leaseService   *services.LeaseService
	rentRunService *services.RentRunService
}

func NewInvoicesController(
	is *services.InvoiceService,
	ls *services.LeaseService,
	rs *services.RentRunService,
) *InvoicesController {
	return &InvoicesController{invoiceService: is, leaseService: ls, rentRunService: rs}
}

// ----------------------------------------------------------------
// POST /api/v1/invoices
// ----------------------------------------------------------------
func (c *InvoicesController) CreateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	lease, err := c.leaseService.GetLease(r.Context(), req.LeaseID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	inv, err := c.invoiceService.CreateManualInvoice(
		r.Context(), lease, req.Category, req.Description, req.Amount, req.DueDate,
	)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.InvoiceResponse{Invoice: inv})
}

// ----------------------------------------------------------------
// GET /api/v1/leases/{leaseId}/invoices
// ----------------------------------------------------------------
func (c *InvoicesController) ListLeaseInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUIDVar(w, r, "leaseId")
	if !ok {
		return
	}

	invoices, err := c.invoiceService.ListByLease(r.Context(), leaseID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.InvoiceListResponse{Invoices: invoices})
}

// ----------------------------------------------------------------
// GET /api/v1/tenants/{tenantId}/invoices
// ----------------------------------------------------------------
func (c *InvoicesController) ListTenantInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDVar(w, r, "tenantId")
	if !ok {
		return
	}

	invoices, err := c.invoiceService.ListByTenant(r.Context(), tenantID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.InvoiceListResponse{Invoices: invoices})
}

// ----------------------------------------------------------------
// POST /api/v1/rent-runs/trigger
// ----------------------------------------------------------------
func (c *InvoicesController) TriggerRentRunHandler(w http.ResponseWriter, r *http.Request) {
	run, err := c.rentRunService.Run(r.Context(), services.TriggerAdminBatch)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RentRunResponse{Run: run})
}

// ----------------------------------------------------------------
// GET /api/v1/rent-runs
// ----------------------------------------------------------------
func (c *InvoicesController) ListRentRunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := c.rentRunService.ListRuns(r.Context(), 50)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RentRunListResponse{Runs: runs})
}

// ----------------------------------------------------------------
// GET /api/v1/rent-runs/{runId}
// ----------------------------------------------------------------
func (c *InvoicesController) GetRentRunHandler(w http.ResponseWriter, r *http.Request) {
	runID, ok := parseUUIDVar(w, r, "runId")
	if !ok {
		return
	}

	run, logs, err := c.rentRunService.GetRun(r.Context(), runID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RentRunResponse{Run: run, Logs: logs})
}
