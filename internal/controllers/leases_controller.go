package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/stayware/leasing-service/internal/dtos"
	"github.com/stayware/leasing-service/internal/services"
	"github.com/stayware/leasing-service/internal/utils"
)

var validate = validator.New()

type LeasesController struct {
	leaseService *services.LeaseService
}

func NewLeasesController(ls *services.LeaseService) *LeasesController {
	return &LeasesController{leaseService: ls}
}

// ----------------------------------------------------------------
// POST /api/v1/leases
// ----------------------------------------------------------------
func (c *LeasesController) CreateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateLeaseRequest
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

	lease, err := c.leaseService.CreateLease(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.LeaseResponse{Lease: lease})
}

// ----------------------------------------------------------------
// POST /api/v1/leases/{leaseId}/activate
// ----------------------------------------------------------------
func (c *LeasesController) ActivateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUIDVar(w, r, "leaseId")
	if !ok {
		return
	}

	lease, err := c.leaseService.ActivateLease(r.Context(), leaseID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LeaseResponse{Lease: lease})
}

// ----------------------------------------------------------------
// POST /api/v1/leases/{leaseId}/move
// ----------------------------------------------------------------
func (c *LeasesController) MarkMovedHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUIDVar(w, r, "leaseId")
	if !ok {
		return
	}

	lease, err := c.leaseService.MarkMoved(r.Context(), leaseID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LeaseResponse{Lease: lease})
}

// ----------------------------------------------------------------
// GET /api/v1/leases/{leaseId}
// ----------------------------------------------------------------
func (c *LeasesController) GetLeaseHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUIDVar(w, r, "leaseId")
	if !ok {
		return
	}

	lease, err := c.leaseService.GetLease(r.Context(), leaseID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LeaseResponse{Lease: lease})
}

// ----------------------------------------------------------------
// PATCH /api/v1/leases/{leaseId}
// ----------------------------------------------------------------
func (c *LeasesController) UpdateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUIDVar(w, r, "leaseId")
	if !ok {
		return
	}

	var req dtos.UpdateLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err,
		)
		return
	}

	lease, err := c.leaseService.UpdateLease(r.Context(), leaseID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LeaseResponse{Lease: lease})
}

// ----------------------------------------------------------------
// DELETE /api/v1/leases/{leaseId}
// ----------------------------------------------------------------
func (c *LeasesController) DeleteLeaseHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUIDVar(w, r, "leaseId")
	if !ok {
		return
	}

	if err := c.leaseService.DeleteLease(r.Context(), leaseID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ----------------------------------------------------------------
// GET /api/v1/units/{unitId}/active-lease
// ----------------------------------------------------------------
func (c *LeasesController) GetActiveLeaseHandler(w http.ResponseWriter, r *http.Request) {
	unitID, ok := parseUUIDVar(w, r, "unitId")
	if !ok {
		return
	}

	lease, err := c.leaseService.GetActiveLease(r.Context(), unitID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if lease == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "No active lease for this unit", nil,
		)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LeaseResponse{Lease: lease})
}

// ----------------------------------------------------------------
// GET /api/v1/units/{unitId}/leases
// ----------------------------------------------------------------
func (c *LeasesController) ListLeaseHistoryHandler(w http.ResponseWriter, r *http.Request) {
	unitID, ok := parseUUIDVar(w, r, "unitId")
	if !ok {
		return
	}

	leases, err := c.leaseService.ListLeaseHistory(r.Context(), unitID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LeaseListResponse{Leases: leases})
}

// parseUUIDVar pulls a UUID path variable or writes the 400 itself.
func parseUUIDVar(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid "+name, nil, err,
		)
		return uuid.Nil, false
	}
	return id, true
}
