package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

/*
In-memory fakes of the repository interfaces. All fakes share one store and
return themselves from WithTx, so service logic runs unchanged against a
map-backed state.
*/

type fakeStore struct {
	properties map[uuid.UUID]*models.Property
	units      map[uuid.UUID]*models.Unit
	bedrooms   map[uuid.UUID]*models.Bedroom
	users      map[uuid.UUID]*models.User
	leases     map[uuid.UUID]*models.Lease
	invoices   map[uuid.UUID]*models.Invoice
	sequences  map[string]int64
	runs       map[uuid.UUID]*models.RentRun
	runLogs    []*models.RentRunLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		properties: make(map[uuid.UUID]*models.Property),
		units:      make(map[uuid.UUID]*models.Unit),
		bedrooms:   make(map[uuid.UUID]*models.Bedroom),
		users:      make(map[uuid.UUID]*models.User),
		leases:     make(map[uuid.UUID]*models.Lease),
		invoices:   make(map[uuid.UUID]*models.Invoice),
		sequences:  make(map[string]int64),
		runs:       make(map[uuid.UUID]*models.RentRun),
	}
}

/* ---------- DB / Tx ---------- */

type fakeDB struct{}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) { return nil, nil }
func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error)         { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row                { return nil }
func (f *fakeDB) Begin(context.Context) (repositories.Tx, error)                  { return f, nil }
func (f *fakeDB) Commit(context.Context) error                                    { return nil }
func (f *fakeDB) Rollback(context.Context) error                                  { return nil }

/* ---------- properties ---------- */

type fakePropertyRepo struct{ s *fakeStore }

func (r *fakePropertyRepo) WithTx(repositories.Tx) repositories.PropertyRepository { return r }

func (r *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.s.properties[p.ID] = p
	return nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	return r.s.properties[id], nil
}

func (r *fakePropertyRepo) ListAll(context.Context) ([]*models.Property, error) {
	var out []*models.Property
	for _, p := range r.s.properties {
		out = append(out, p)
	}
	return out, nil
}

/* ---------- units ---------- */

type fakeUnitRepo struct{ s *fakeStore }

func (r *fakeUnitRepo) WithTx(repositories.Tx) repositories.UnitRepository { return r }

func (r *fakeUnitRepo) Create(_ context.Context, u *models.Unit) error {
	u.RowVersion = 1
	r.s.units[u.ID] = u
	return nil
}

func (r *fakeUnitRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.s.units[id], nil
}

func (r *fakeUnitRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUnitRepo) ListByPropertyID(_ context.Context, propID uuid.UUID) ([]*models.Unit, error) {
	var out []*models.Unit
	for _, u := range r.s.units {
		if u.PropertyID == propID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.UnitStatusType) error {
	if u, ok := r.s.units[id]; ok {
		u.Status = status
	}
	return nil
}

func (r *fakeUnitRepo) UpdateStatusAndMode(_ context.Context, id uuid.UUID, status models.UnitStatusType, mode models.RentalModeType) error {
	if u, ok := r.s.units[id]; ok {
		u.Status = status
		u.RentalMode = mode
	}
	return nil
}

func (r *fakeUnitRepo) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	u, ok := r.s.units[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := mutate(u); err != nil {
		return err
	}
	u.RowVersion++
	return nil
}

/* ---------- bedrooms ---------- */

type fakeBedroomRepo struct{ s *fakeStore }

func (r *fakeBedroomRepo) WithTx(repositories.Tx) repositories.BedroomRepository { return r }

func (r *fakeBedroomRepo) CreateMany(_ context.Context, bedrooms []*models.Bedroom) error {
	for _, b := range bedrooms {
		r.s.bedrooms[b.ID] = b
	}
	return nil
}

func (r *fakeBedroomRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Bedroom, error) {
	return r.s.bedrooms[id], nil
}

func (r *fakeBedroomRepo) ListByUnitID(_ context.Context, unitID uuid.UUID) ([]*models.Bedroom, error) {
	var out []*models.Bedroom
	for _, b := range r.s.bedrooms {
		if b.UnitID == unitID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BedroomNumber < out[j].BedroomNumber })
	return out, nil
}

func (r *fakeBedroomRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.BedroomStatusType) error {
	if b, ok := r.s.bedrooms[id]; ok {
		b.Status = status
	}
	return nil
}

func (r *fakeBedroomRepo) UpdateStatusByUnitID(_ context.Context, unitID uuid.UUID, status models.BedroomStatusType) error {
	for _, b := range r.s.bedrooms {
		if b.UnitID == unitID {
			b.Status = status
		}
	}
	return nil
}

/* ---------- users ---------- */

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) WithTx(repositories.Tx) repositories.UserRepository { return r }

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.s.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListResidentsByLeaseID(_ context.Context, leaseID uuid.UUID) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.s.users {
		if u.Type == models.TenantTypeResident && u.LeaseID != nil && *u.LeaseID == leaseID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.s.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) SetAssignments(_ context.Context, id uuid.UUID, leaseID, unitID uuid.UUID, bedroomID *uuid.UUID, propertyID uuid.UUID) error {
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.LeaseID = &leaseID
	u.UnitID = &unitID
	u.BedroomID = bedroomID
	u.PropertyID = &propertyID
	return nil
}

func (r *fakeUserRepo) ClearAssignments(_ context.Context, id uuid.UUID) error {
	if u, ok := r.s.users[id]; ok {
		u.LeaseID, u.UnitID, u.BedroomID, u.PropertyID = nil, nil, nil, nil
	}
	return nil
}

func (r *fakeUserRepo) DetachResidentsFromLease(_ context.Context, leaseID uuid.UUID) error {
	for _, u := range r.s.users {
		if u.Type == models.TenantTypeResident && u.LeaseID != nil && *u.LeaseID == leaseID {
			u.LeaseID, u.UnitID, u.BedroomID, u.PropertyID = nil, nil, nil, nil
		}
	}
	return nil
}

func (r *fakeUserRepo) SetInvite(_ context.Context, id uuid.UUID, token string, expires time.Time) error {
	if u, ok := r.s.users[id]; ok {
		u.InviteToken = &token
		u.InviteExpires = &expires
	}
	return nil
}

func (r *fakeUserRepo) SetPassword(_ context.Context, id uuid.UUID, hash string) error {
	if u, ok := r.s.users[id]; ok {
		u.Password = &hash
	}
	return nil
}

/* ---------- leases ---------- */

type fakeLeaseRepo struct{ s *fakeStore }

func (r *fakeLeaseRepo) WithTx(repositories.Tx) repositories.LeaseRepository { return r }

func (r *fakeLeaseRepo) withTenantType(l *models.Lease) *models.Lease {
	if l == nil {
		return nil
	}
	if u, ok := r.s.users[l.TenantID]; ok {
		l.TenantType = u.Type
	}
	return l
}

func (r *fakeLeaseRepo) Create(_ context.Context, l *models.Lease) error {
	l.RowVersion = 1
	r.s.leases[l.ID] = l
	return nil
}

func (r *fakeLeaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.withTenantType(r.s.leases[id]), nil
}

func (r *fakeLeaseRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeLeaseRepo) Update(_ context.Context, l *models.Lease) error {
	stored, ok := r.s.leases[l.ID]
	if !ok {
		return utils.ErrNoRowsUpdated
	}
	if stored != l && stored.RowVersion != l.RowVersion {
		return utils.ErrRowVersionConflict
	}
	l.RowVersion++
	r.s.leases[l.ID] = l
	return nil
}

func (r *fakeLeaseRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.LeaseStatusType) error {
	if l, ok := r.s.leases[id]; ok {
		l.Status = status
		l.RowVersion++
	}
	return nil
}

func (r *fakeLeaseRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.leases[id]; !ok {
		return utils.ErrNoRowsUpdated
	}
	delete(r.s.leases, id)
	return nil
}

func (r *fakeLeaseRepo) ListByUnitIDWithStatuses(_ context.Context, unitID uuid.UUID, statuses []models.LeaseStatusType) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.UnitID != unitID {
			continue
		}
		for _, st := range statuses {
			if l.Status == st {
				out = append(out, r.withTenantType(l))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) FindDraft(_ context.Context, tenantID, unitID uuid.UUID, bedroomID *uuid.UUID) (*models.Lease, error) {
	for _, l := range r.s.leases {
		if l.TenantID != tenantID || l.UnitID != unitID || l.Status != models.LeaseStatusDraft {
			continue
		}
		if (bedroomID == nil) != (l.BedroomID == nil) {
			continue
		}
		if bedroomID != nil && *bedroomID != *l.BedroomID {
			continue
		}
		return r.withTenantType(l), nil
	}
	return nil, nil
}

func (r *fakeLeaseRepo) FindActiveByBedroomID(_ context.Context, bedroomID uuid.UUID) (*models.Lease, error) {
	for _, l := range r.s.leases {
		if l.Status == models.LeaseStatusActive && l.BedroomID != nil && *l.BedroomID == bedroomID {
			return r.withTenantType(l), nil
		}
	}
	return nil, nil
}

func (r *fakeLeaseRepo) ListExpired(_ context.Context, cutoff time.Time) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.Status == models.LeaseStatusActive && l.EndDate.Before(cutoff) {
			out = append(out, r.withTenantType(l))
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) ListActiveInTerm(_ context.Context, on time.Time) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.Status == models.LeaseStatusActive && !l.StartDate.After(on) && !l.EndDate.Before(on) {
			out = append(out, r.withTenantType(l))
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) HasOtherActiveByTenant(_ context.Context, tenantID, excludeLeaseID uuid.UUID) (bool, error) {
	for _, l := range r.s.leases {
		if l.TenantID == tenantID && l.Status == models.LeaseStatusActive && l.ID != excludeLeaseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLeaseRepo) ListByTenantID(_ context.Context, tenantID uuid.UUID) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.TenantID == tenantID {
			out = append(out, r.withTenantType(l))
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) ListAll(context.Context) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range r.s.leases {
		out = append(out, r.withTenantType(l))
	}
	return out, nil
}

/* ---------- invoices ---------- */

type fakeInvoiceRepo struct{ s *fakeStore }

func (r *fakeInvoiceRepo) WithTx(repositories.Tx) repositories.InvoiceRepository { return r }

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *models.Invoice) error {
	inv.CreatedAt = time.Now()
	r.s.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	return r.s.invoices[id], nil
}

func (r *fakeInvoiceRepo) ListByLeaseID(_ context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		if inv.LeaseID == leaseID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNo < out[j].InvoiceNo })
	return out, nil
}

func (r *fakeInvoiceRepo) ListByTenantID(_ context.Context, tenantID uuid.UUID) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		if inv.TenantID == tenantID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) RentInvoiceExists(_ context.Context, leaseID uuid.UUID, month string) (bool, error) {
	for _, inv := range r.s.invoices {
		if inv.LeaseID == leaseID && inv.Month == month &&
			inv.Category == models.InvoiceCategoryRent && inv.Status != models.InvoiceStatusVoid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvoiceRepo) DepositInvoiceExists(_ context.Context, leaseID uuid.UUID) (bool, error) {
	for _, inv := range r.s.invoices {
		if inv.LeaseID == leaseID && inv.Category == models.InvoiceCategoryService &&
			inv.Description == models.DepositDescription && inv.Status != models.InvoiceStatusVoid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvoiceRepo) RepairZeroAmountRent(_ context.Context, leaseID uuid.UUID, rent decimal.Decimal) (int64, error) {
	var n int64
	for _, inv := range r.s.invoices {
		if inv.LeaseID == leaseID && inv.Category == models.InvoiceCategoryRent &&
			inv.PaidAmount.IsZero() && inv.Amount.IsZero() &&
			inv.Status != models.InvoiceStatusPaid && inv.Status != models.InvoiceStatusVoid {
			inv.Rent, inv.Amount, inv.BalanceDue = rent, rent, rent
			n++
		}
	}
	return n, nil
}

/* ---------- invoice sequences ---------- */

type fakeSequenceRepo struct{ s *fakeStore }

func (r *fakeSequenceRepo) WithTx(repositories.Tx) repositories.InvoiceSequenceRepository { return r }

func (r *fakeSequenceRepo) Next(_ context.Context, prefix string) (string, error) {
	r.s.sequences[prefix]++
	return fmt.Sprintf("%s%05d", prefix, r.s.sequences[prefix]), nil
}

/* ---------- rent runs ---------- */

type fakeRentRunRepo struct{ s *fakeStore }

func (r *fakeRentRunRepo) WithTx(repositories.Tx) repositories.RentRunRepository { return r }

func (r *fakeRentRunRepo) CreateRun(_ context.Context, run *models.RentRun) error {
	r.s.runs[run.ID] = run
	return nil
}

func (r *fakeRentRunRepo) UpdateRun(_ context.Context, run *models.RentRun) error {
	r.s.runs[run.ID] = run
	return nil
}

func (r *fakeRentRunRepo) GetRun(_ context.Context, id uuid.UUID) (*models.RentRun, error) {
	return r.s.runs[id], nil
}

func (r *fakeRentRunRepo) ListRuns(_ context.Context, limit int) ([]*models.RentRun, error) {
	var out []*models.RentRun
	for _, run := range r.s.runs {
		out = append(out, run)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRentRunRepo) CreateLog(_ context.Context, log *models.RentRunLog) error {
	r.s.runLogs = append(r.s.runLogs, log)
	return nil
}

func (r *fakeRentRunRepo) ListLogs(_ context.Context, runID uuid.UUID) ([]*models.RentRunLog, error) {
	var out []*models.RentRunLog
	for _, l := range r.s.runLogs {
		if l.RunID == runID {
			out = append(out, l)
		}
	}
	return out, nil
}

/* ---------- notifier ---------- */

type fakeNotifier struct {
	invited [][]uuid.UUID
}

func (n *fakeNotifier) SendPortalInvites(_ context.Context, userIDs []uuid.UUID) {
	n.invited = append(n.invited, userIDs)
}
