package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayware/leasing-service/internal/dtos"
	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

// UnitService provisions units and bedrooms and owns the maintenance
// toggle. Occupancy transitions live in the lease state machine; this
// service never flips a status that derives from leases.
type UnitService struct {
	db         repositories.DB
	properties repositories.PropertyRepository
	units      repositories.UnitRepository
	bedrooms   repositories.BedroomRepository
	leases     repositories.LeaseRepository
}

func NewUnitService(
	db repositories.DB,
	properties repositories.PropertyRepository,
	units repositories.UnitRepository,
	bedrooms repositories.BedroomRepository,
	leases repositories.LeaseRepository,
) *UnitService {
	return &UnitService{
		db:         db,
		properties: properties,
		units:      units,
		bedrooms:   bedrooms,
		leases:     leases,
	}
}

// CreateUnit persists a vacant unit and, for bedroom-wise units, its
// bedrooms with generated identifiers like "12B-3".
func (s *UnitService) CreateUnit(ctx context.Context, req dtos.CreateUnitRequest) (*models.Unit, []*models.Bedroom, error) {
	if req.RentalMode == models.RentalModeBedroomWise && req.BedroomCount < 1 {
		return nil, nil, utils.NewValidationError("bedroom-wise units need at least one bedroom")
	}

	prop, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, nil, err
	}
	if prop == nil {
		return nil, nil, utils.NewNotFoundError("property not found")
	}

	unit := &models.Unit{
		ID:           uuid.New(),
		PropertyID:   prop.ID,
		UnitNumber:   req.UnitNumber,
		RentalMode:   req.RentalMode,
		Status:       models.UnitStatusVacant,
		BedroomCount: req.BedroomCount,
	}

	var bedrooms []*models.Bedroom
	for i := 1; i <= req.BedroomCount; i++ {
		bedrooms = append(bedrooms, &models.Bedroom{
			ID:            uuid.New(),
			UnitID:        unit.ID,
			BedroomNumber: fmt.Sprintf("%s-%d", unit.UnitNumber, i),
			Status:        models.BedroomStatusVacant,
		})
	}

	err = repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		if err := s.units.WithTx(tx).Create(ctx, unit); err != nil {
			return err
		}
		return s.bedrooms.WithTx(tx).CreateMany(ctx, bedrooms)
	})
	if err != nil {
		return nil, nil, err
	}
	return unit, bedrooms, nil
}

// UpdateUnit edits unit details under optimistic locking. The rental mode
// can only change while the unit is vacant with no Active or DRAFT lease;
// occupancy-derived statuses are never touched here.
func (s *UnitService) UpdateUnit(ctx context.Context, unitID uuid.UUID, req dtos.UpdateUnitRequest) (*models.Unit, error) {
	if req.RentalMode != nil {
		leases, err := s.leases.ListByUnitIDWithStatuses(ctx, unitID, []models.LeaseStatusType{
			models.LeaseStatusActive, models.LeaseStatusDraft,
		})
		if err != nil {
			return nil, err
		}
		if len(leases) > 0 {
			return nil, utils.NewConflictError("rental mode cannot change while the unit has leases", utils.ErrUnitNotVacant)
		}
	}

	var updated *models.Unit
	err := s.units.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		if req.UnitNumber != nil {
			u.UnitNumber = *req.UnitNumber
		}
		if req.RentalMode != nil {
			if u.Status != models.UnitStatusVacant {
				return utils.NewConflictError("rental mode can only change on a vacant unit", utils.ErrUnitNotVacant)
			}
			if *req.RentalMode == models.RentalModeBedroomWise && u.BedroomCount < 1 {
				return utils.NewValidationError("bedroom-wise units need at least one bedroom")
			}
			u.RentalMode = *req.RentalMode
		}
		updated = u
		return nil
	})
	if err == pgx.ErrNoRows {
		return nil, utils.NewNotFoundError("unit not found")
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetMaintenance flips the Under Maintenance override. Putting a unit under
// maintenance is refused while it has an Active lease; lifting it restores
// the status derived from current bedroom and lease state.
func (s *UnitService) SetMaintenance(ctx context.Context, unitID uuid.UUID, under bool) (*models.Unit, error) {
	var updated *models.Unit
	err := repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		units := s.units.WithTx(tx)
		bedrooms := s.bedrooms.WithTx(tx)
		leases := s.leases.WithTx(tx)

		unit, err := units.GetByIDForUpdate(ctx, unitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return utils.NewNotFoundError("unit not found")
		}

		active, err := leases.ListByUnitIDWithStatuses(ctx, unitID, []models.LeaseStatusType{models.LeaseStatusActive})
		if err != nil {
			return err
		}

		if under {
			if len(active) > 0 {
				return utils.NewConflictError("unit has an active lease", utils.ErrUnitAlreadyLeased)
			}
			unit.Status = models.UnitStatusUnderMaintenance
		} else {
			if unit.Status != models.UnitStatusUnderMaintenance {
				updated = unit
				return nil
			}
			bs, err := bedrooms.ListByUnitID(ctx, unitID)
			if err != nil {
				return err
			}
			unit.Status = ComputeUnitStatus(models.UnitStatusVacant, bs, active)
		}

		if err := units.UpdateStatus(ctx, unitID, unit.Status); err != nil {
			return err
		}
		updated = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UnitService) GetUnit(ctx context.Context, unitID uuid.UUID) (*models.Unit, []*models.Bedroom, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, nil, err
	}
	if unit == nil {
		return nil, nil, utils.NewNotFoundError("unit not found")
	}
	bedrooms, err := s.bedrooms.ListByUnitID(ctx, unitID)
	if err != nil {
		return nil, nil, err
	}
	return unit, bedrooms, nil
}

func (s *UnitService) ListUnits(ctx context.Context, propertyID uuid.UUID) ([]*models.Unit, error) {
	return s.units.ListByPropertyID(ctx, propertyID)
}
