package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
)

/*
OccupancyLedger keeps Unit.status and Bedroom.status consistent with the set
of currently Active leases. It never re-validates preconditions; the lease
state machine checks them inside the same transaction before calling in.
*/
type OccupancyLedger struct {
	units    repositories.UnitRepository
	bedrooms repositories.BedroomRepository
	leases   repositories.LeaseRepository
}

func NewOccupancyLedger(
	units repositories.UnitRepository,
	bedrooms repositories.BedroomRepository,
	leases repositories.LeaseRepository,
) *OccupancyLedger {
	return &OccupancyLedger{units: units, bedrooms: bedrooms, leases: leases}
}

func (o *OccupancyLedger) WithTx(tx repositories.Tx) *OccupancyLedger {
	return &OccupancyLedger{
		units:    o.units.WithTx(tx),
		bedrooms: o.bedrooms.WithTx(tx),
		leases:   o.leases.WithTx(tx),
	}
}

// OccupyFullUnit marks the whole unit taken by one lease. An individual
// tenant fills the unit completely; a company holds it Occupied until each
// bedroom gets its own resident lease.
func (o *OccupancyLedger) OccupyFullUnit(ctx context.Context, unitID uuid.UUID, tenantType models.TenantTypeType) error {
	status := models.UnitStatusFullyBooked
	if tenantType == models.TenantTypeCompany {
		status = models.UnitStatusOccupied
	}
	if err := o.bedrooms.UpdateStatusByUnitID(ctx, unitID, models.BedroomStatusOccupied); err != nil {
		return err
	}
	return o.units.UpdateStatus(ctx, unitID, status)
}

// OccupyBedroom marks one bedroom taken and recomputes the unit status.
// Leasing a bedroom forces the unit into bedroom-wise mode.
func (o *OccupancyLedger) OccupyBedroom(ctx context.Context, unitID, bedroomID uuid.UUID) error {
	if err := o.bedrooms.UpdateStatus(ctx, bedroomID, models.BedroomStatusOccupied); err != nil {
		return err
	}
	status, err := o.deriveUnitStatus(ctx, unitID)
	if err != nil || status == "" {
		return err
	}
	return o.units.UpdateStatusAndMode(ctx, unitID, status, models.RentalModeBedroomWise)
}

// ReleaseFullUnit vacates the unit and every bedroom under it. The caller
// has already verified no other lease still references the unit.
func (o *OccupancyLedger) ReleaseFullUnit(ctx context.Context, unitID uuid.UUID) error {
	unit, err := o.units.GetByID(ctx, unitID)
	if err != nil {
		return err
	}
	if unit == nil {
		return nil
	}
	if err := o.bedrooms.UpdateStatusByUnitID(ctx, unitID, models.BedroomStatusVacant); err != nil {
		return err
	}
	if unit.Status == models.UnitStatusUnderMaintenance {
		return nil
	}
	return o.units.UpdateStatus(ctx, unitID, models.UnitStatusVacant)
}

// ReleaseBedroom vacates one bedroom and recomputes the unit status from
// what remains.
func (o *OccupancyLedger) ReleaseBedroom(ctx context.Context, unitID, bedroomID uuid.UUID) error {
	if err := o.bedrooms.UpdateStatus(ctx, bedroomID, models.BedroomStatusVacant); err != nil {
		return err
	}
	status, err := o.deriveUnitStatus(ctx, unitID)
	if err != nil || status == "" {
		return err
	}
	return o.units.UpdateStatus(ctx, unitID, status)
}

// deriveUnitStatus reloads the unit's bedrooms and Active leases and runs
// the pure derivation. Recomputing fully on every mutation keeps the
// denormalized status from ever drifting.
func (o *OccupancyLedger) deriveUnitStatus(ctx context.Context, unitID uuid.UUID) (models.UnitStatusType, error) {
	unit, err := o.units.GetByID(ctx, unitID)
	if err != nil {
		return "", err
	}
	if unit == nil {
		return "", nil
	}
	bedrooms, err := o.bedrooms.ListByUnitID(ctx, unitID)
	if err != nil {
		return "", err
	}
	active, err := o.leases.ListByUnitIDWithStatuses(ctx, unitID, []models.LeaseStatusType{models.LeaseStatusActive})
	if err != nil {
		return "", err
	}
	return ComputeUnitStatus(unit.Status, bedrooms, active), nil
}

// ComputeUnitStatus derives what a unit's status should be from its current
// status, its bedrooms, and its Active leases. Under Maintenance is a
// terminal override and is never recomputed away.
func ComputeUnitStatus(current models.UnitStatusType, bedrooms []*models.Bedroom, active []*models.Lease) models.UnitStatusType {
	if current == models.UnitStatusUnderMaintenance {
		return current
	}

	var fullUnit *models.Lease
	leasedBedrooms := make(map[uuid.UUID]bool)
	for _, l := range active {
		if l.IsFullUnit() {
			fullUnit = l
		} else {
			leasedBedrooms[*l.BedroomID] = true
		}
	}

	if fullUnit != nil {
		if fullUnit.TenantType == models.TenantTypeCompany {
			// A company-held unit only counts as fully booked once every
			// bedroom carries its own resident lease.
			if len(bedrooms) > 0 && allBedroomsLeased(bedrooms, leasedBedrooms) {
				return models.UnitStatusFullyBooked
			}
			return models.UnitStatusOccupied
		}
		return models.UnitStatusFullyBooked
	}

	occupied := 0
	for _, b := range bedrooms {
		if b.Status == models.BedroomStatusOccupied {
			occupied++
		}
	}
	switch {
	case len(bedrooms) > 0 && occupied == len(bedrooms):
		return models.UnitStatusFullyBooked
	case occupied > 0:
		return models.UnitStatusOccupied
	default:
		return models.UnitStatusVacant
	}
}

func allBedroomsLeased(bedrooms []*models.Bedroom, leased map[uuid.UUID]bool) bool {
	for _, b := range bedrooms {
		if !leased[b.ID] {
			return false
		}
	}
	return true
}
