package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

// SeedTestData loads a small fixture set for dev environments: one
// property, a full-unit and a bedroom-wise unit, and three tenants. It is
// idempotent, keyed on the admin user's email.
func SeedTestData(
	ctx context.Context,
	db repositories.DB,
	properties repositories.PropertyRepository,
	units repositories.UnitRepository,
	bedrooms repositories.BedroomRepository,
	users repositories.UserRepository,
) error {
	existing, err := users.GetByEmail(ctx, "admin@stayware.dev")
	if err != nil {
		return err
	}
	if existing != nil {
		utils.Logger.Info("Seed data already present, skipping")
		return nil
	}

	utils.Logger.Info("Seeding dev/test data")

	return repositories.InTx(ctx, db, func(tx repositories.Tx) error {
		txProperties := properties.WithTx(tx)
		txUnits := units.WithTx(tx)
		txBedrooms := bedrooms.WithTx(tx)
		txUsers := users.WithTx(tx)

		prop := &models.Property{
			ID:           uuid.New(),
			PropertyName: "Harborview Residences",
			CivicNumber:  "1200",
			Address:      "Shoreline Ave",
			City:         "Halifax",
			State:        "NS",
			ZipCode:      "B3H 0A1",
		}
		if err := txProperties.Create(ctx, prop); err != nil {
			return err
		}

		fullUnit := &models.Unit{
			ID:         uuid.New(),
			PropertyID: prop.ID,
			UnitNumber: "101",
			RentalMode: models.RentalModeFullUnit,
			Status:     models.UnitStatusVacant,
		}
		if err := txUnits.Create(ctx, fullUnit); err != nil {
			return err
		}

		sharedUnit := &models.Unit{
			ID:           uuid.New(),
			PropertyID:   prop.ID,
			UnitNumber:   "102",
			RentalMode:   models.RentalModeBedroomWise,
			Status:       models.UnitStatusVacant,
			BedroomCount: 3,
		}
		if err := txUnits.Create(ctx, sharedUnit); err != nil {
			return err
		}
		var rooms []*models.Bedroom
		for _, n := range []string{"102-1", "102-2", "102-3"} {
			rooms = append(rooms, &models.Bedroom{
				ID:            uuid.New(),
				UnitID:        sharedUnit.ID,
				BedroomNumber: n,
				Status:        models.BedroomStatusVacant,
			})
		}
		if err := txBedrooms.CreateMany(ctx, rooms); err != nil {
			return err
		}

		adminHash, err := utils.HashPassword("admin-dev-password")
		if err != nil {
			return err
		}
		seedUsers := []*models.User{
			{
				ID:        uuid.New(),
				Role:      models.RoleAdmin,
				Type:      models.TenantTypeIndividual,
				FirstName: "Dev",
				LastName:  "Admin",
				Email:     utils.Ptr("admin@stayware.dev"),
				Password:  &adminHash,
			},
			{
				ID:        uuid.New(),
				Role:      models.RoleTenant,
				Type:      models.TenantTypeIndividual,
				FirstName: "Ida",
				LastName:  "Larsen",
				Email:     utils.Ptr("ida.larsen@example.com"),
				Phone:     utils.Ptr("+15550100001"),
			},
			{
				ID:        uuid.New(),
				Role:      models.RoleTenant,
				Type:      models.TenantTypeCompany,
				FirstName: "Acme",
				LastName:  "Relocations",
				Email:     utils.Ptr("housing@acme-relocations.example.com"),
				Phone:     utils.Ptr("+15550100002"),
			},
		}
		for _, u := range seedUsers {
			if err := txUsers.Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}
