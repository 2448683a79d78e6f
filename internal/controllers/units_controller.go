package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/stayware/leasing-service/internal/dtos"
	"github.com/stayware/leasing-service/internal/services"
	"github.com/stayware/leasing-service/internal/utils"
)

type UnitsController struct {
	unitService *services.UnitService
}

func NewUnitsController(us *services.UnitService) *UnitsController {
	return &UnitsController{unitService: us}
}

// ----------------------------------------------------------------
// POST /api/v1/units
// ----------------------------------------------------------------
func (c *UnitsController) CreateUnitHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateUnitRequest
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

	unit, bedrooms, err := c.unitService.CreateUnit(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.UnitResponse{Unit: unit, Bedrooms: bedrooms})
}

// ----------------------------------------------------------------
// GET /api/v1/units/{unitId}
// ----------------------------------------------------------------
func (c *UnitsController) GetUnitHandler(w http.ResponseWriter, r *http.Request) {
	unitID, ok := parseUUIDVar(w, r, "unitId")
	if !ok {
		return
	}

	unit, bedrooms, err := c.unitService.GetUnit(r.Context(), unitID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnitResponse{Unit: unit, Bedrooms: bedrooms})
}

// ----------------------------------------------------------------
// PATCH /api/v1/units/{unitId}
// ----------------------------------------------------------------
func (c *UnitsController) UpdateUnitHandler(w http.ResponseWriter, r *http.Request) {
	unitID, ok := parseUUIDVar(w, r, "unitId")
	if !ok {
		return
	}

	var req dtos.UpdateUnitRequest
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

	unit, err := c.unitService.UpdateUnit(r.Context(), unitID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnitResponse{Unit: unit})
}

// ----------------------------------------------------------------
// PATCH /api/v1/units/{unitId}/maintenance
// ----------------------------------------------------------------
func (c *UnitsController) SetMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	unitID, ok := parseUUIDVar(w, r, "unitId")
	if !ok {
		return
	}

	var req dtos.SetUnitMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err,
		)
		return
	}

	unit, err := c.unitService.SetMaintenance(r.Context(), unitID, req.UnderMaintenance)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnitResponse{Unit: unit})
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{propertyId}/units
// ----------------------------------------------------------------
func (c *UnitsController) ListUnitsHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := parseUUIDVar(w, r, "propertyId")
	if !ok {
		return
	}

	units, err := c.unitService.ListUnits(r.Context(), propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnitListResponse{Units: units})
}
