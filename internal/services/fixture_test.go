package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayware/leasing-service/internal/models"
)

// fixture wires every service against the shared in-memory store with a
// frozen clock.
type fixture struct {
	store    *fakeStore
	notifier *fakeNotifier

	leaseSvc   *LeaseService
	invoiceSvc *InvoiceService
	rentRunSvc *RentRunService
	expirySvc  *LeaseExpiryService
	unitSvc    *UnitService

	now time.Time
}

func newFixture() *fixture {
	store := newFakeStore()
	db := &fakeDB{}

	props := &fakePropertyRepo{s: store}
	units := &fakeUnitRepo{s: store}
	bedrooms := &fakeBedroomRepo{s: store}
	users := &fakeUserRepo{s: store}
	leases := &fakeLeaseRepo{s: store}
	invoices := &fakeInvoiceRepo{s: store}
	seqs := &fakeSequenceRepo{s: store}
	runs := &fakeRentRunRepo{s: store}
	notifier := &fakeNotifier{}

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	invoiceSvc := NewInvoiceService(db, invoices, seqs, users)
	leaseSvc := NewLeaseService(db, leases, units, bedrooms, users, invoiceSvc, notifier)
	leaseSvc.now = func() time.Time { return now }

	expirySvc := NewLeaseExpiryService(leases, leaseSvc)
	expirySvc.now = func() time.Time { return now }

	rentRunSvc := NewRentRunService(db, leases, invoiceSvc, users, runs)
	rentRunSvc.now = func() time.Time { return now }

	unitSvc := NewUnitService(db, props, units, bedrooms, leases)

	return &fixture{
		store:      store,
		notifier:   notifier,
		leaseSvc:   leaseSvc,
		invoiceSvc: invoiceSvc,
		rentRunSvc: rentRunSvc,
		expirySvc:  expirySvc,
		unitSvc:    unitSvc,
		now:        now,
	}
}

func (f *fixture) addProperty() *models.Property {
	p := &models.Property{ID: uuid.New(), PropertyName: "Harborview"}
	f.store.properties[p.ID] = p
	return p
}

func (f *fixture) addUnit(prop *models.Property, mode models.RentalModeType, bedroomCount int) (*models.Unit, []*models.Bedroom) {
	u := &models.Unit{
		ID:           uuid.New(),
		PropertyID:   prop.ID,
		UnitNumber:   "101",
		RentalMode:   mode,
		Status:       models.UnitStatusVacant,
		BedroomCount: bedroomCount,
	}
	u.RowVersion = 1
	f.store.units[u.ID] = u

	var rooms []*models.Bedroom
	for i := 1; i <= bedroomCount; i++ {
		b := &models.Bedroom{
			ID:            uuid.New(),
			UnitID:        u.ID,
			BedroomNumber: fmt.Sprintf("%s-%d", u.UnitNumber, i),
			Status:        models.BedroomStatusVacant,
		}
		f.store.bedrooms[b.ID] = b
		rooms = append(rooms, b)
	}
	return u, rooms
}

func (f *fixture) addTenant(tt models.TenantTypeType) *models.User {
	u := &models.User{
		ID:        uuid.New(),
		Role:      models.RoleTenant,
		Type:      tt,
		FirstName: "Test",
		LastName:  "Tenant",
	}
	f.store.users[u.ID] = u
	return u
}

func (f *fixture) addResident(parent *models.User) *models.User {
	u := &models.User{
		ID:        uuid.New(),
		Role:      models.RoleTenant,
		Type:      models.TenantTypeResident,
		FirstName: "Test",
		LastName:  "Resident",
		ParentID:  &parent.ID,
	}
	f.store.users[u.ID] = u
	return u
}

func (f *fixture) leaseInvoices(leaseID uuid.UUID, category models.InvoiceCategoryType) []*models.Invoice {
	var out []*models.Invoice
	for _, inv := range f.store.invoices {
		if inv.LeaseID == leaseID && inv.Category == category {
			out = append(out, inv)
		}
	}
	return out
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
