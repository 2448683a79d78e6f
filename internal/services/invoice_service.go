package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

// Invoice number prefixes, one counter series per generation source.
const (
	InvoicePrefixLease   = "INV-LEASE-"
	InvoicePrefixDeposit = "INV-DEP-"
	InvoicePrefixAuto    = "INV-AUTO-"
	InvoicePrefixBatch   = "INV-BATCH-"
	InvoicePrefixManual  = "INV-MAN-"
)

type InvoiceService struct {
	db       repositories.DB
	invoices repositories.InvoiceRepository
	seqs     repositories.InvoiceSequenceRepository
	users    repositories.UserRepository
}

func NewInvoiceService(
	db repositories.DB,
	invoices repositories.InvoiceRepository,
	seqs repositories.InvoiceSequenceRepository,
	users repositories.UserRepository,
) *InvoiceService {
	return &InvoiceService{db: db, invoices: invoices, seqs: seqs, users: users}
}

func (s *InvoiceService) withTx(tx repositories.Tx) *InvoiceService {
	return &InvoiceService{
		db:       tx,
		invoices: s.invoices.WithTx(tx),
		seqs:     s.seqs.WithTx(tx),
		users:    s.users.WithTx(tx),
	}
}

/* ---------------- catch-up at activation ---------------- */

// GenerateCatchUpInvoices creates one rent invoice per calendar month from
// the lease's start month through now's month inclusive, skipping months
// that already have one. Only the first month is pro-rated. It runs inside
// the caller's activation transaction.
func (s *InvoiceService) GenerateCatchUpInvoices(ctx context.Context, tx repositories.Tx, lease *models.Lease, now time.Time) (int, error) {
	txSvc := s.withTx(tx)

	billableID, err := txSvc.resolveBillableTenant(ctx, lease.TenantID)
	if err != nil {
		return 0, err
	}

	created := 0
	start := dateOnly(lease.StartDate)
	currentMonth := firstOfMonth(now)

	for iter := firstOfMonth(start); !iter.After(currentMonth); iter = iter.AddDate(0, 1, 0) {
		month := monthLabel(iter)

		exists, err := txSvc.invoices.RentInvoiceExists(ctx, lease.ID, month)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		amount := lease.MonthlyRent
		if iter.Equal(firstOfMonth(start)) {
			amount = proRatedFirstMonthRent(lease.MonthlyRent, start)
		}

		// The first month falls due on the start date itself, later
		// catch-up months on their own first day.
		dueDate := iter
		if start.After(iter) {
			dueDate = start
		}

		if _, err := txSvc.createRentInvoice(ctx, lease, billableID, month, amount, dueDate, InvoicePrefixLease); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// GenerateDepositInvoice creates the one-time security deposit invoice.
// It is a no-op when the deposit is zero or one already exists, so
// re-activating a lease can never double-bill the deposit.
func (s *InvoiceService) GenerateDepositInvoice(ctx context.Context, tx repositories.Tx, lease *models.Lease) (bool, error) {
	if !lease.SecurityDeposit.IsPositive() {
		return false, nil
	}
	txSvc := s.withTx(tx)

	exists, err := txSvc.invoices.DepositInvoiceExists(ctx, lease.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	billableID, err := txSvc.resolveBillableTenant(ctx, lease.TenantID)
	if err != nil {
		return false, err
	}

	no, err := txSvc.seqs.Next(ctx, InvoicePrefixDeposit)
	if err != nil {
		return false, err
	}

	inv := &models.Invoice{
		ID:          uuid.New(),
		InvoiceNo:   no,
		TenantID:    billableID,
		UnitID:      lease.UnitID,
		LeaseID:     lease.ID,
		Category:    models.InvoiceCategoryService,
		Description: models.DepositDescription,
		Month:       monthLabel(lease.StartDate),
		Rent:        decimal.Zero,
		ServiceFees: lease.SecurityDeposit,
		Amount:      lease.SecurityDeposit,
		PaidAmount:  decimal.Zero,
		BalanceDue:  lease.SecurityDeposit,
		Status:      models.InvoiceStatusSent,
		DueDate:     dateOnly(lease.StartDate),
	}
	if err := txSvc.invoices.Create(ctx, inv); err != nil {
		return false, err
	}
	return true, nil
}

// CreateRentInvoiceInTx creates one rent invoice for the given period inside
// an existing transaction. Used by the recurring batch.
func (s *InvoiceService) CreateRentInvoiceInTx(
	ctx context.Context,
	tx repositories.Tx,
	lease *models.Lease,
	month string,
	dueDate time.Time,
	prefix string,
) (*models.Invoice, error) {
	txSvc := s.withTx(tx)

	billableID, err := txSvc.resolveBillableTenant(ctx, lease.TenantID)
	if err != nil {
		return nil, err
	}
	return txSvc.createRentInvoice(ctx, lease, billableID, month, lease.MonthlyRent, dueDate, prefix)
}

/* ---------------- manual creation + reads ---------------- */

// CreateManualInvoice is the admin one-off path (service charges, ad-hoc
// rent corrections). It bills the resolved billable tenant like every other
// path.
func (s *InvoiceService) CreateManualInvoice(
	ctx context.Context,
	lease *models.Lease,
	category models.InvoiceCategoryType,
	description string,
	amount decimal.Decimal,
	dueDate time.Time,
) (*models.Invoice, error) {
	if !amount.IsPositive() {
		return nil, utils.NewValidationError("invoice amount must be greater than zero")
	}

	var created *models.Invoice
	err := repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txSvc := s.withTx(tx)

		billableID, err := txSvc.resolveBillableTenant(ctx, lease.TenantID)
		if err != nil {
			return err
		}
		no, err := txSvc.seqs.Next(ctx, InvoicePrefixManual)
		if err != nil {
			return err
		}

		rent, fees := decimal.Zero, decimal.Zero
		if category == models.InvoiceCategoryRent {
			rent = amount
		} else {
			fees = amount
		}

		inv := &models.Invoice{
			ID:          uuid.New(),
			InvoiceNo:   no,
			TenantID:    billableID,
			UnitID:      lease.UnitID,
			LeaseID:     lease.ID,
			Category:    category,
			Description: description,
			Month:       monthLabel(dueDate),
			Rent:        rent,
			ServiceFees: fees,
			Amount:      amount,
			PaidAmount:  decimal.Zero,
			BalanceDue:  amount,
			Status:      models.InvoiceStatusSent,
			DueDate:     dateOnly(dueDate),
		}
		if err := txSvc.invoices.Create(ctx, inv); err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *InvoiceService) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	return s.invoices.ListByLeaseID(ctx, leaseID)
}

func (s *InvoiceService) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Invoice, error) {
	return s.invoices.ListByTenantID(ctx, tenantID)
}

/* ---------------- internals ---------------- */

func (s *InvoiceService) createRentInvoice(
	ctx context.Context,
	lease *models.Lease,
	billableID uuid.UUID,
	month string,
	amount decimal.Decimal,
	dueDate time.Time,
	prefix string,
) (*models.Invoice, error) {
	no, err := s.seqs.Next(ctx, prefix)
	if err != nil {
		return nil, err
	}
	inv := &models.Invoice{
		ID:          uuid.New(),
		InvoiceNo:   no,
		TenantID:    billableID,
		UnitID:      lease.UnitID,
		LeaseID:     lease.ID,
		Category:    models.InvoiceCategoryRent,
		Month:       month,
		Rent:        amount,
		ServiceFees: decimal.Zero,
		Amount:      amount,
		PaidAmount:  decimal.Zero,
		BalanceDue:  amount,
		Status:      models.InvoiceStatusSent,
		DueDate:     dateOnly(dueDate),
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// resolveBillableTenant maps a lease holder to the party that pays. A
// Resident's consumption always bills to its parent.
func (s *InvoiceService) resolveBillableTenant(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error) {
	tenant, err := s.users.GetByID(ctx, tenantID)
	if err != nil {
		return uuid.Nil, err
	}
	if tenant == nil {
		return uuid.Nil, fmt.Errorf("lease tenant %s not found", tenantID)
	}
	return tenant.BillableTenantID(), nil
}
