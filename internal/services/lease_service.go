package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stayware/leasing-service/internal/dtos"
	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

// PortalInviteSender delivers portal credentials after a lease activates.
// Delivery failures are logged by the implementation and never surface to
// the activation caller.
type PortalInviteSender interface {
	SendPortalInvites(ctx context.Context, userIDs []uuid.UUID)
}

/*
LeaseService is the lease state machine: DRAFT → Active → Expired/Moved.
Every transition runs in one transaction that re-reads current occupancy
state before writing, so two concurrent activations for the same unit
resolve to one success and one conflict.
*/
type LeaseService struct {
	db        repositories.DB
	leases    repositories.LeaseRepository
	units     repositories.UnitRepository
	bedrooms  repositories.BedroomRepository
	users     repositories.UserRepository
	occupancy *OccupancyLedger
	invoices  *InvoiceService
	notifier  PortalInviteSender

	now func() time.Time
}

func NewLeaseService(
	db repositories.DB,
	leases repositories.LeaseRepository,
	units repositories.UnitRepository,
	bedrooms repositories.BedroomRepository,
	users repositories.UserRepository,
	invoices *InvoiceService,
	notifier PortalInviteSender,
) *LeaseService {
	return &LeaseService{
		db:        db,
		leases:    leases,
		units:     units,
		bedrooms:  bedrooms,
		users:     users,
		occupancy: NewOccupancyLedger(units, bedrooms, leases),
		invoices:  invoices,
		notifier:  notifier,
		now:       time.Now,
	}
}

// leaseTxRepos bundles the tx-scoped views of every collaborator one
// transition needs.
type leaseTxRepos struct {
	leases    repositories.LeaseRepository
	units     repositories.UnitRepository
	bedrooms  repositories.BedroomRepository
	users     repositories.UserRepository
	occupancy *OccupancyLedger
}

func (s *LeaseService) txRepos(tx repositories.Tx) *leaseTxRepos {
	return &leaseTxRepos{
		leases:    s.leases.WithTx(tx),
		units:     s.units.WithTx(tx),
		bedrooms:  s.bedrooms.WithTx(tx),
		users:     s.users.WithTx(tx),
		occupancy: s.occupancy.WithTx(tx),
	}
}

/* ===================== Create ===================== */

// CreateLease validates, persists, and (unless req.Draft) immediately
// activates a lease: occupancy writes, catch-up invoices, deposit invoice,
// and co-tenant attachment all commit together or not at all.
func (s *LeaseService) CreateLease(ctx context.Context, req dtos.CreateLeaseRequest) (*models.Lease, error) {
	if !req.MonthlyRent.IsPositive() {
		return nil, utils.NewValidationError("monthly rent must be greater than zero")
	}
	for _, id := range req.CoTenantIDs {
		if id == req.TenantID {
			return nil, &utils.AppError{
				StatusCode: 400, Code: utils.ErrCodeValidation,
				Message: "primary tenant cannot be listed as a co-tenant",
				Err:     utils.ErrPrimaryTenantAsCoTenant,
			}
		}
	}

	var lease *models.Lease
	err := repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txr := s.txRepos(tx)

		tenant, err := s.loadLeaseHolder(ctx, txr, req.TenantID)
		if err != nil {
			return err
		}

		// Row-lock the unit; concurrent transitions for it queue up here.
		unit, err := txr.units.GetByIDForUpdate(ctx, req.UnitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return utils.NewNotFoundError("unit not found")
		}

		var bedroom *models.Bedroom
		if req.BedroomID != nil {
			bedroom, err = txr.bedrooms.GetByID(ctx, *req.BedroomID)
			if err != nil {
				return err
			}
			if bedroom == nil || bedroom.UnitID != unit.ID {
				return utils.NewNotFoundError("bedroom not found in unit")
			}
		}

		if err := s.validatePlacement(ctx, txr, tenant, unit, bedroom, uuid.Nil); err != nil {
			return err
		}

		status := models.LeaseStatusActive
		if req.Draft {
			status = models.LeaseStatusDraft
		}
		leaseType := models.LeaseTypeFullUnit
		if bedroom != nil {
			leaseType = models.LeaseTypeBedroom
		}

		// Reuse a stale DRAFT row for the same tenant and placement
		// instead of inserting a duplicate.
		existing, err := txr.leases.FindDraft(ctx, tenant.ID, unit.ID, req.BedroomID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Status = status
			existing.StartDate = dateOnly(req.StartDate)
			existing.EndDate = dateOnly(req.EndDate)
			existing.MonthlyRent = req.MonthlyRent
			existing.SecurityDeposit = req.SecurityDeposit
			existing.LeaseType = leaseType
			if err := txr.leases.Update(ctx, existing); err != nil {
				return err
			}
			lease = existing
		} else {
			lease = &models.Lease{
				ID:              uuid.New(),
				TenantID:        tenant.ID,
				UnitID:          unit.ID,
				BedroomID:       req.BedroomID,
				Status:          status,
				LeaseType:       leaseType,
				StartDate:       dateOnly(req.StartDate),
				EndDate:         dateOnly(req.EndDate),
				MonthlyRent:     req.MonthlyRent,
				SecurityDeposit: req.SecurityDeposit,
			}
			if err := txr.leases.Create(ctx, lease); err != nil {
				return err
			}
		}
		lease.TenantType = tenant.Type

		if status == models.LeaseStatusActive {
			return s.applyActivation(ctx, tx, txr, lease, tenant, req.CoTenantIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lease.Status == models.LeaseStatusActive && req.SendCredentials && s.notifier != nil {
		s.notifier.SendPortalInvites(ctx, append([]uuid.UUID{lease.TenantID}, req.CoTenantIDs...))
	}
	return lease, nil
}

/* ===================== Activate ===================== */

// ActivateLease promotes a DRAFT lease, re-running the placement checks
// against current state: the draft may have gone stale if another lease was
// activated for the same unit meanwhile. Calling it on an already Active
// lease re-triggers occupancy and invoice generation idempotently.
func (s *LeaseService) ActivateLease(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error) {
	var lease *models.Lease
	err := repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txr := s.txRepos(tx)

		var err error
		lease, err = txr.leases.GetByIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		if lease == nil {
			return utils.NewNotFoundError("lease not found")
		}
		if lease.IsTerminal() {
			return utils.NewConflictError("lease has already ended", utils.ErrLeaseEnded)
		}

		tenant, err := s.loadLeaseHolder(ctx, txr, lease.TenantID)
		if err != nil {
			return err
		}

		if _, err := txr.units.GetByIDForUpdate(ctx, lease.UnitID); err != nil {
			return err
		}

		if lease.Status == models.LeaseStatusDraft {
			unit, err := txr.units.GetByID(ctx, lease.UnitID)
			if err != nil {
				return err
			}
			if unit == nil {
				return utils.NewNotFoundError("unit not found")
			}
			var bedroom *models.Bedroom
			if lease.BedroomID != nil {
				if bedroom, err = txr.bedrooms.GetByID(ctx, *lease.BedroomID); err != nil {
					return err
				}
				if bedroom == nil {
					return utils.NewNotFoundError("bedroom not found")
				}
			}
			if err := s.validatePlacement(ctx, txr, tenant, unit, bedroom, lease.ID); err != nil {
				return err
			}
			if err := txr.leases.UpdateStatus(ctx, lease.ID, models.LeaseStatusActive); err != nil {
				return err
			}
			lease.Status = models.LeaseStatusActive
		}

		return s.applyActivation(ctx, tx, txr, lease, tenant, nil)
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

/* ===================== Update ===================== */

// UpdateLease mutates lease terms and optionally the tenant's name fields
// without touching occupancy. A rent change is propagated into
// already-generated unpaid invoices that still carry a zero amount.
func (s *LeaseService) UpdateLease(ctx context.Context, leaseID uuid.UUID, req dtos.UpdateLeaseRequest) (*models.Lease, error) {
	if req.MonthlyRent != nil && !req.MonthlyRent.IsPositive() {
		return nil, utils.NewValidationError("monthly rent must be greater than zero")
	}

	var lease *models.Lease
	err := repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txr := s.txRepos(tx)

		var err error
		lease, err = txr.leases.GetByIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		if lease == nil {
			return utils.NewNotFoundError("lease not found")
		}

		rentChanged := false
		if req.StartDate != nil {
			lease.StartDate = dateOnly(*req.StartDate)
		}
		if req.EndDate != nil {
			lease.EndDate = dateOnly(*req.EndDate)
		}
		if req.MonthlyRent != nil && !req.MonthlyRent.Equal(lease.MonthlyRent) {
			lease.MonthlyRent = *req.MonthlyRent
			rentChanged = true
		}
		if req.SecurityDeposit != nil {
			lease.SecurityDeposit = *req.SecurityDeposit
		}
		if lease.EndDate.Before(lease.StartDate) {
			return utils.NewValidationError("end date must be after start date")
		}

		if err := txr.leases.Update(ctx, lease); err != nil {
			return err
		}

		if req.TenantFirstName != nil || req.TenantLastName != nil {
			tenant, err := txr.users.GetByID(ctx, lease.TenantID)
			if err != nil {
				return err
			}
			if tenant == nil {
				return utils.NewNotFoundError("tenant not found")
			}
			if req.TenantFirstName != nil {
				tenant.FirstName = *req.TenantFirstName
			}
			if req.TenantLastName != nil {
				tenant.LastName = *req.TenantLastName
			}
			if err := txr.users.Update(ctx, tenant); err != nil {
				return err
			}
		}

		if rentChanged {
			txInvoices := s.invoices.withTx(tx)
			if _, err := txInvoices.invoices.RepairZeroAmountRent(ctx, lease.ID, lease.MonthlyRent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

/* ===================== Delete ===================== */

// DeleteLease hard-deletes a lease. An Active lease first releases its
// occupancy and detaches its occupants; a DRAFT never marked anything, so
// only the references are cleaned up.
func (s *LeaseService) DeleteLease(ctx context.Context, leaseID uuid.UUID) error {
	return repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txr := s.txRepos(tx)

		lease, err := txr.leases.GetByIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		if lease == nil {
			return utils.NewNotFoundError("lease not found")
		}

		if lease.Status == models.LeaseStatusActive {
			if _, err := txr.units.GetByIDForUpdate(ctx, lease.UnitID); err != nil {
				return err
			}
			if err := s.releaseOccupancy(ctx, txr, lease); err != nil {
				return err
			}
		}

		if err := s.detachOccupants(ctx, txr, lease); err != nil {
			return err
		}
		return txr.leases.Delete(ctx, lease.ID)
	})
}

/* ===================== Expire ===================== */

// ExpireLease transitions one Active lease past its end date to Expired,
// inside its own transaction. The sweep calls this per lease so one bad
// lease cannot block the rest of the batch.
func (s *LeaseService) ExpireLease(ctx context.Context, leaseID uuid.UUID) error {
	return repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txr := s.txRepos(tx)

		lease, err := txr.leases.GetByIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		if lease == nil || lease.Status != models.LeaseStatusActive {
			// Already handled by a concurrent manual transition.
			return nil
		}
		if !lease.EndDate.Before(dateOnly(s.now())) {
			return nil
		}

		if _, err := txr.units.GetByIDForUpdate(ctx, lease.UnitID); err != nil {
			return err
		}

		if err := txr.leases.UpdateStatus(ctx, lease.ID, models.LeaseStatusExpired); err != nil {
			return err
		}
		if err := s.detachOccupants(ctx, txr, lease); err != nil {
			return err
		}
		return s.releaseOccupancy(ctx, txr, lease)
	})
}

/* ===================== Move ===================== */

// MarkMoved ends an Active lease because the tenant relocated within the
// system. It releases occupancy and detaches occupants like an expiry, but
// records the Moved terminal state so the history distinguishes a move-out
// from a term running out.
func (s *LeaseService) MarkMoved(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error) {
	var lease *models.Lease
	err := repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txr := s.txRepos(tx)

		var err error
		lease, err = txr.leases.GetByIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		if lease == nil {
			return utils.NewNotFoundError("lease not found")
		}
		if lease.Status != models.LeaseStatusActive {
			return utils.NewConflictError("only active leases can be marked moved", utils.ErrLeaseEnded)
		}

		if _, err := txr.units.GetByIDForUpdate(ctx, lease.UnitID); err != nil {
			return err
		}

		if err := txr.leases.UpdateStatus(ctx, lease.ID, models.LeaseStatusMoved); err != nil {
			return err
		}
		lease.Status = models.LeaseStatusMoved
		if err := s.detachOccupants(ctx, txr, lease); err != nil {
			return err
		}
		return s.releaseOccupancy(ctx, txr, lease)
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

/* ===================== reads ===================== */

func (s *LeaseService) GetLease(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error) {
	lease, err := s.leases.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, utils.NewNotFoundError("lease not found")
	}
	return lease, nil
}

// GetActiveLease returns the unit's current Active lease, full-unit first.
func (s *LeaseService) GetActiveLease(ctx context.Context, unitID uuid.UUID) (*models.Lease, error) {
	active, err := s.leases.ListByUnitIDWithStatuses(ctx, unitID, []models.LeaseStatusType{models.LeaseStatusActive})
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	for _, l := range active {
		if l.IsFullUnit() {
			return l, nil
		}
	}
	return active[0], nil
}

func (s *LeaseService) ListLeaseHistory(ctx context.Context, unitID uuid.UUID) ([]*models.Lease, error) {
	return s.leases.ListByUnitIDWithStatuses(ctx, unitID, []models.LeaseStatusType{
		models.LeaseStatusDraft, models.LeaseStatusActive,
		models.LeaseStatusExpired, models.LeaseStatusMoved,
	})
}

func (s *LeaseService) ListTenantLeases(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error) {
	return s.leases.ListByTenantID(ctx, tenantID)
}

/* ===================== internals ===================== */

func (s *LeaseService) loadLeaseHolder(ctx context.Context, txr *leaseTxRepos, tenantID uuid.UUID) (*models.User, error) {
	tenant, err := txr.users.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, utils.NewNotFoundError("tenant not found")
	}
	if tenant.Type == models.TenantTypeResident {
		return nil, &utils.AppError{
			StatusCode: 400, Code: utils.ErrCodeValidation,
			Message: "residents cannot hold leases",
			Err:     utils.ErrResidentCannotLease,
		}
	}
	return tenant, nil
}

// validatePlacement runs the full-unit or bedroom conflict checks against
// current state. excludeLeaseID skips the caller's own DRAFT row when a
// draft re-activates.
func (s *LeaseService) validatePlacement(
	ctx context.Context,
	txr *leaseTxRepos,
	tenant *models.User,
	unit *models.Unit,
	bedroom *models.Bedroom,
	excludeLeaseID uuid.UUID,
) error {
	if unit.Status == models.UnitStatusUnderMaintenance {
		return utils.NewConflictError("unit is under maintenance", utils.ErrUnitUnderMaintenance)
	}

	existing, err := txr.leases.ListByUnitIDWithStatuses(ctx, unit.ID, []models.LeaseStatusType{
		models.LeaseStatusActive, models.LeaseStatusDraft,
	})
	if err != nil {
		return err
	}

	var activeFullUnit *models.Lease
	activeOnUnit := 0
	for _, l := range existing {
		if l.ID == excludeLeaseID {
			continue
		}
		switch l.Status {
		case models.LeaseStatusActive:
			activeOnUnit++
			if l.IsFullUnit() {
				activeFullUnit = l
			}
		case models.LeaseStatusDraft:
			if l.IsFullUnit() && l.TenantID != tenant.ID {
				return utils.NewConflictError("unit is reserved by another draft lease", utils.ErrUnitReserved)
			}
		}
	}

	if bedroom == nil {
		// Full-unit lease: the unit must be entirely free.
		bedrooms, err := txr.bedrooms.ListByUnitID(ctx, unit.ID)
		if err != nil {
			return err
		}
		for _, b := range bedrooms {
			if b.Status == models.BedroomStatusOccupied {
				return utils.NewConflictError("bedrooms under this unit are already occupied", utils.ErrBedroomOccupied)
			}
		}
		if activeOnUnit > 0 {
			return utils.NewConflictError("unit already has an active lease", utils.ErrUnitAlreadyLeased)
		}
		return nil
	}

	// Bedroom lease.
	if activeFullUnit != nil && activeFullUnit.TenantType != models.TenantTypeCompany {
		return utils.NewConflictError("unit is held by an active full-unit lease", utils.ErrUnitAlreadyLeased)
	}
	if bedroom.Status != models.BedroomStatusVacant {
		// A company holding the whole unit pre-marks every bedroom
		// Occupied; individual resident leases may still claim them one
		// by one until each carries its own Active lease.
		claimed, err := txr.leases.FindActiveByBedroomID(ctx, bedroom.ID)
		if err != nil {
			return err
		}
		if claimed != nil && claimed.ID != excludeLeaseID {
			return utils.NewConflictError("bedroom already has an active lease", utils.ErrBedroomOccupied)
		}
		if activeFullUnit == nil {
			return utils.NewConflictError("bedroom is occupied", utils.ErrBedroomOccupied)
		}
	}
	return nil
}

// applyActivation performs the post-validation side of going Active:
// occupancy writes, invoice catch-up, deposit invoice, and occupant
// attachment. Every step is idempotent so a re-trigger is harmless.
func (s *LeaseService) applyActivation(
	ctx context.Context,
	tx repositories.Tx,
	txr *leaseTxRepos,
	lease *models.Lease,
	tenant *models.User,
	coTenantIDs []uuid.UUID,
) error {
	if lease.IsFullUnit() {
		if err := txr.occupancy.OccupyFullUnit(ctx, lease.UnitID, tenant.Type); err != nil {
			return err
		}
	} else {
		if err := txr.occupancy.OccupyBedroom(ctx, lease.UnitID, *lease.BedroomID); err != nil {
			return err
		}
	}

	if _, err := s.invoices.GenerateCatchUpInvoices(ctx, tx, lease, s.now()); err != nil {
		return err
	}
	if _, err := s.invoices.GenerateDepositInvoice(ctx, tx, lease); err != nil {
		return err
	}

	unit, err := txr.units.GetByID(ctx, lease.UnitID)
	if err != nil {
		return err
	}
	if err := txr.users.SetAssignments(ctx, tenant.ID, lease.ID, lease.UnitID, lease.BedroomID, unit.PropertyID); err != nil {
		return err
	}

	return s.attachCoTenants(ctx, txr, lease, unit.PropertyID, coTenantIDs)
}

func (s *LeaseService) attachCoTenants(
	ctx context.Context,
	txr *leaseTxRepos,
	lease *models.Lease,
	propertyID uuid.UUID,
	coTenantIDs []uuid.UUID,
) error {
	if len(coTenantIDs) == 0 {
		return nil
	}
	residents, err := txr.users.ListByIDs(ctx, coTenantIDs)
	if err != nil {
		return err
	}
	if len(residents) != len(coTenantIDs) {
		return utils.NewNotFoundError("one or more co-tenants not found")
	}
	for _, res := range residents {
		if res.Type != models.TenantTypeResident {
			return utils.NewValidationError(
				fmt.Sprintf("co-tenant %s is not a resident", res.ID))
		}
		if err := txr.users.SetAssignments(ctx, res.ID, lease.ID, lease.UnitID, lease.BedroomID, propertyID); err != nil {
			return err
		}
	}
	return nil
}

// detachOccupants unhooks residents from the lease and clears the tenant's
// own residency pointers when no other Active lease still covers them.
func (s *LeaseService) detachOccupants(ctx context.Context, txr *leaseTxRepos, lease *models.Lease) error {
	if err := txr.users.DetachResidentsFromLease(ctx, lease.ID); err != nil {
		return err
	}
	hasOther, err := txr.leases.HasOtherActiveByTenant(ctx, lease.TenantID, lease.ID)
	if err != nil {
		return err
	}
	if !hasOther {
		return txr.users.ClearAssignments(ctx, lease.TenantID)
	}
	return nil
}

// releaseOccupancy is the inverse of the occupancy claim, guarded by a
// fresh in-transaction read: the unit only goes Vacant when no other
// Active or DRAFT lease still references it.
func (s *LeaseService) releaseOccupancy(ctx context.Context, txr *leaseTxRepos, lease *models.Lease) error {
	if lease.IsFullUnit() {
		others, err := txr.leases.ListByUnitIDWithStatuses(ctx, lease.UnitID, []models.LeaseStatusType{
			models.LeaseStatusActive, models.LeaseStatusDraft,
		})
		if err != nil {
			return err
		}
		for _, l := range others {
			if l.ID != lease.ID {
				return nil
			}
		}
		return txr.occupancy.ReleaseFullUnit(ctx, lease.UnitID)
	}
	return txr.occupancy.ReleaseBedroom(ctx, lease.UnitID, *lease.BedroomID)
}
