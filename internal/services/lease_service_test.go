package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayware/leasing-service/internal/dtos"
	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/utils"
)

func leaseRequest(tenant *models.User, unit *models.Unit) dtos.CreateLeaseRequest {
	return dtos.CreateLeaseRequest{
		TenantID:    tenant.ID,
		UnitID:      unit.ID,
		StartDate:   time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		MonthlyRent: money("930"),
	}
}

func TestCreateLeaseActivatesAndBackfills(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)
	resident := f.addResident(tenant)

	req := leaseRequest(tenant, unit)
	req.SecurityDeposit = money("1000")
	req.CoTenantIDs = []uuid.UUID{resident.ID}
	req.SendCredentials = true

	lease, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusActive, lease.Status)
	assert.Equal(t, models.LeaseTypeFullUnit, lease.LeaseType)

	// January through March, first month pro-rated: 930/31*22 from Jan 10.
	rents := f.leaseInvoices(lease.ID, models.InvoiceCategoryRent)
	require.Len(t, rents, 3)
	byMonth := map[string]*models.Invoice{}
	for _, inv := range rents {
		byMonth[inv.Month] = inv
	}
	jan := byMonth["January 2026"]
	require.NotNil(t, jan)
	assert.True(t, jan.Amount.Equal(money("660")), "got %s", jan.Amount)
	assert.Equal(t, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), jan.DueDate)
	feb := byMonth["February 2026"]
	require.NotNil(t, feb)
	assert.True(t, feb.Amount.Equal(money("930")))
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), feb.DueDate)
	require.NotNil(t, byMonth["March 2026"])

	deposits := f.leaseInvoices(lease.ID, models.InvoiceCategoryService)
	require.Len(t, deposits, 1)
	assert.Equal(t, models.DepositDescription, deposits[0].Description)
	assert.True(t, deposits[0].Amount.Equal(money("1000")))

	assert.Equal(t, models.UnitStatusFullyBooked, f.store.units[unit.ID].Status)
	require.NotNil(t, tenant.LeaseID)
	assert.Equal(t, lease.ID, *tenant.LeaseID)
	require.NotNil(t, resident.LeaseID)
	assert.Equal(t, lease.ID, *resident.LeaseID)

	require.Len(t, f.notifier.invited, 1)
	assert.ElementsMatch(t, []uuid.UUID{tenant.ID, resident.ID}, f.notifier.invited[0])
}

func TestCreateLeaseRejectsResidentHolder(t *testing.T) {
	f := newFixture()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)
	resident := f.addResident(tenant)

	_, err := f.leaseSvc.CreateLease(context.Background(), leaseRequest(resident, unit))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrResidentCannotLease))
}

func TestCreateLeaseRejectsPrimaryAsCoTenant(t *testing.T) {
	f := newFixture()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(tenant, unit)
	req.CoTenantIDs = []uuid.UUID{tenant.ID}
	_, err := f.leaseSvc.CreateLease(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrPrimaryTenantAsCoTenant))
}

func TestCreateLeaseRejectsNonPositiveRent(t *testing.T) {
	f := newFixture()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(tenant, unit)
	req.MonthlyRent = money("0")
	_, err := f.leaseSvc.CreateLease(context.Background(), req)
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestCreateLeaseFullUnitConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	first := f.addTenant(models.TenantTypeIndividual)
	second := f.addTenant(models.TenantTypeIndividual)

	_, err := f.leaseSvc.CreateLease(ctx, leaseRequest(first, unit))
	require.NoError(t, err)

	_, err = f.leaseSvc.CreateLease(ctx, leaseRequest(second, unit))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrUnitAlreadyLeased))
}

func TestCreateLeaseFullUnitOverOccupiedBedroom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, rooms := f.addUnit(prop, models.RentalModeBedroomWise, 2)
	roomer := f.addTenant(models.TenantTypeIndividual)
	whole := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(roomer, unit)
	req.BedroomID = &rooms[0].ID
	_, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)

	_, err = f.leaseSvc.CreateLease(ctx, leaseRequest(whole, unit))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrBedroomOccupied))
}

func TestCreateLeaseBedroomExclusivity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, rooms := f.addUnit(prop, models.RentalModeBedroomWise, 2)
	first := f.addTenant(models.TenantTypeIndividual)
	second := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(first, unit)
	req.BedroomID = &rooms[0].ID
	_, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusOccupied, f.store.units[unit.ID].Status)

	// Same bedroom again fails.
	req2 := leaseRequest(second, unit)
	req2.BedroomID = &rooms[0].ID
	_, err = f.leaseSvc.CreateLease(ctx, req2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrBedroomOccupied))

	// The other bedroom fills the unit.
	req2.BedroomID = &rooms[1].ID
	_, err = f.leaseSvc.CreateLease(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusFullyBooked, f.store.units[unit.ID].Status)
}

func TestCompanyUnitFillsBedroomByBedroom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, rooms := f.addUnit(prop, models.RentalModeBedroomWise, 2)
	company := f.addTenant(models.TenantTypeCompany)

	_, err := f.leaseSvc.CreateLease(ctx, leaseRequest(company, unit))
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusOccupied, f.store.units[unit.ID].Status)
	for _, b := range rooms {
		assert.Equal(t, models.BedroomStatusOccupied, f.store.bedrooms[b.ID].Status)
	}

	// Individual bedroom leases are still allowed under the company hold.
	for i, b := range rooms {
		roomer := f.addTenant(models.TenantTypeIndividual)
		req := leaseRequest(roomer, unit)
		req.BedroomID = &b.ID
		_, err := f.leaseSvc.CreateLease(ctx, req)
		require.NoError(t, err, "bedroom %d", i)
	}
	assert.Equal(t, models.UnitStatusFullyBooked, f.store.units[unit.ID].Status)

	// But a bedroom with its own active lease stays exclusive.
	late := f.addTenant(models.TenantTypeIndividual)
	req := leaseRequest(late, unit)
	req.BedroomID = &rooms[0].ID
	_, err = f.leaseSvc.CreateLease(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrBedroomOccupied))
}

func TestCreateLeaseDraftThenReuse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(tenant, unit)
	req.Draft = true
	draft, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusDraft, draft.Status)
	assert.Empty(t, f.leaseInvoices(draft.ID, models.InvoiceCategoryRent))
	assert.Equal(t, models.UnitStatusVacant, f.store.units[unit.ID].Status)

	// Re-submitting without the draft flag activates the same row.
	req.Draft = false
	lease, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, lease.ID)
	assert.Equal(t, models.LeaseStatusActive, lease.Status)
	assert.Len(t, f.leaseInvoices(lease.ID, models.InvoiceCategoryRent), 3)
}

func TestActivateStaleDraftConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, rooms := f.addUnit(prop, models.RentalModeBedroomWise, 2)
	drafter := f.addTenant(models.TenantTypeIndividual)
	rival := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(drafter, unit)
	req.BedroomID = &rooms[0].ID
	req.Draft = true
	draft, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)

	// Someone else takes the bedroom while the draft sits.
	rivalReq := leaseRequest(rival, unit)
	rivalReq.BedroomID = &rooms[0].ID
	_, err = f.leaseSvc.CreateLease(ctx, rivalReq)
	require.NoError(t, err)

	_, err = f.leaseSvc.ActivateLease(ctx, draft.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrBedroomOccupied))
	assert.Equal(t, models.LeaseStatusDraft, f.store.leases[draft.ID].Status)
}

func TestActivateTerminalLeaseConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	lease, err := f.leaseSvc.CreateLease(ctx, leaseRequest(tenant, unit))
	require.NoError(t, err)
	f.store.leases[lease.ID].Status = models.LeaseStatusExpired

	_, err = f.leaseSvc.ActivateLease(ctx, lease.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrLeaseEnded))
}

func TestActivateActiveLeaseIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(tenant, unit)
	req.SecurityDeposit = money("500")
	lease, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)

	_, err = f.leaseSvc.ActivateLease(ctx, lease.ID)
	require.NoError(t, err)

	assert.Len(t, f.leaseInvoices(lease.ID, models.InvoiceCategoryRent), 3)
	assert.Len(t, f.leaseInvoices(lease.ID, models.InvoiceCategoryService), 1)
}

func TestUpdateLeaseRepairsZeroAmountInvoices(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	lease, err := f.leaseSvc.CreateLease(ctx, leaseRequest(tenant, unit))
	require.NoError(t, err)

	// A broken import left one unpaid invoice with a zero amount.
	rents := f.leaseInvoices(lease.ID, models.InvoiceCategoryRent)
	require.NotEmpty(t, rents)
	broken := rents[0]
	broken.Rent, broken.Amount, broken.BalanceDue = money("0"), money("0"), money("0")

	newRent := money("1100")
	updated, err := f.leaseSvc.UpdateLease(ctx, lease.ID, dtos.UpdateLeaseRequest{MonthlyRent: &newRent})
	require.NoError(t, err)
	assert.True(t, updated.MonthlyRent.Equal(newRent))
	assert.True(t, broken.Amount.Equal(newRent))
	assert.True(t, broken.BalanceDue.Equal(newRent))
}

func TestUpdateLeasePropagatesTenantNameFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	lease, err := f.leaseSvc.CreateLease(ctx, leaseRequest(tenant, unit))
	require.NoError(t, err)

	first, last := "Nora", "Bergstrom"
	_, err = f.leaseSvc.UpdateLease(ctx, lease.ID, dtos.UpdateLeaseRequest{
		TenantFirstName: &first,
		TenantLastName:  &last,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nora", f.store.users[tenant.ID].FirstName)
	assert.Equal(t, "Bergstrom", f.store.users[tenant.ID].LastName)
}

func TestUpdateLeaseRejectsInvertedDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, _ := f.addUnit(prop, models.RentalModeFullUnit, 0)
	tenant := f.addTenant(models.TenantTypeIndividual)

	lease, err := f.leaseSvc.CreateLease(ctx, leaseRequest(tenant, unit))
	require.NoError(t, err)

	bad := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.leaseSvc.UpdateLease(ctx, lease.ID, dtos.UpdateLeaseRequest{EndDate: &bad})
	require.Error(t, err)
}

func TestDeleteActiveBedroomLeaseVacatesUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, rooms := f.addUnit(prop, models.RentalModeBedroomWise, 2)
	tenant := f.addTenant(models.TenantTypeIndividual)

	req := leaseRequest(tenant, unit)
	req.BedroomID = &rooms[0].ID
	lease, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusOccupied, f.store.units[unit.ID].Status)

	require.NoError(t, f.leaseSvc.DeleteLease(ctx, lease.ID))

	assert.Nil(t, f.store.leases[lease.ID])
	assert.Equal(t, models.BedroomStatusVacant, f.store.bedrooms[rooms[0].ID].Status)
	assert.Equal(t, models.UnitStatusVacant, f.store.units[unit.ID].Status)
	assert.Nil(t, tenant.LeaseID)
}

func TestMarkMovedReleasesOccupancy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, rooms := f.addUnit(prop, models.RentalModeFullUnit, 3)
	tenant := f.addTenant(models.TenantTypeIndividual)
	resident := f.addResident(tenant)

	req := leaseRequest(tenant, unit)
	req.CoTenantIDs = []uuid.UUID{resident.ID}
	lease, err := f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusFullyBooked, f.store.units[unit.ID].Status)

	moved, err := f.leaseSvc.MarkMoved(ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusMoved, moved.Status)

	assert.Equal(t, models.UnitStatusVacant, f.store.units[unit.ID].Status)
	for _, b := range rooms {
		assert.Equal(t, models.BedroomStatusVacant, f.store.bedrooms[b.ID].Status)
	}
	assert.Nil(t, tenant.LeaseID)
	assert.Nil(t, resident.LeaseID)

	// A lease that already ended cannot be moved again.
	_, err = f.leaseSvc.MarkMoved(ctx, lease.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrLeaseEnded))
}

func TestGetActiveLeasePrefersFullUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prop := f.addProperty()
	unit, rooms := f.addUnit(prop, models.RentalModeBedroomWise, 2)
	company := f.addTenant(models.TenantTypeCompany)
	roomer := f.addTenant(models.TenantTypeIndividual)

	whole, err := f.leaseSvc.CreateLease(ctx, leaseRequest(company, unit))
	require.NoError(t, err)

	req := leaseRequest(roomer, unit)
	req.BedroomID = &rooms[0].ID
	_, err = f.leaseSvc.CreateLease(ctx, req)
	require.NoError(t, err)

	got, err := f.leaseSvc.GetActiveLease(ctx, unit.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, whole.ID, got.ID)
}
