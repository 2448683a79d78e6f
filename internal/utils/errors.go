package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrUnitNotVacant           = errors.New("unit_not_vacant")
	ErrUnitUnderMaintenance    = errors.New("unit_under_maintenance")
	ErrLeaseEnded              = errors.New("lease_already_ended")
	ErrBedroomOccupied         = errors.New("bedroom_occupied")
	ErrUnitAlreadyLeased       = errors.New("unit_already_leased")
	ErrUnitReserved            = errors.New("unit_reserved")
	ErrResidentCannotLease     = errors.New("resident_cannot_lease")
	ErrInvalidRentAmount       = errors.New("invalid_rent_amount")
	ErrPrimaryTenantAsCoTenant = errors.New("primary_tenant_as_co_tenant")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	ErrNoRowsUpdated   = errors.New("no_rows_updated")
	ErrAlreadyInvoiced = errors.New("already_invoiced")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: ErrCodeValidation, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: ErrCodeNotFound, Message: msg}
}

func NewConflictError(msg string, err error) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeConflict, Message: msg, Err: err}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
