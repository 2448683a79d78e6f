package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/stayware/leasing-service/internal/models"
)

type InvoiceRepository interface {
	WithTx(tx Tx) InvoiceRepository

	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Invoice, error)

	// RentInvoiceExists is the idempotency check for recurring generation:
	// one non-void rent invoice per lease per month.
	RentInvoiceExists(ctx context.Context, leaseID uuid.UUID, month string) (bool, error)
	DepositInvoiceExists(ctx context.Context, leaseID uuid.UUID) (bool, error)

	// RepairZeroAmountRent backfills unpaid rent invoices that were generated
	// with a zero amount before a rent correction on the lease.
	RepairZeroAmountRent(ctx context.Context, leaseID uuid.UUID, rent decimal.Decimal) (int64, error)
}

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepository(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) WithTx(tx Tx) InvoiceRepository {
	return &invoiceRepo{db: tx}
}

func baseSelectInvoice() string {
	return `
		SELECT id, invoice_no, tenant_id, unit_id, lease_id, category, description,
		month, rent, service_fees, amount, paid_amount, balance_due,
		status, due_date, created_at, updated_at
		FROM invoices`
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	if err := row.Scan(
		&inv.ID, &inv.InvoiceNo, &inv.TenantID, &inv.UnitID, &inv.LeaseID,
		&inv.Category, &inv.Description, &inv.Month,
		&inv.Rent, &inv.ServiceFees, &inv.Amount, &inv.PaidAmount, &inv.BalanceDue,
		&inv.Status, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoices (
			id, invoice_no, tenant_id, unit_id, lease_id, category, description,
			month, rent, service_fees, amount, paid_amount, balance_due,
			status, due_date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, NOW(), NOW())
	`, inv.ID, inv.InvoiceNo, inv.TenantID, inv.UnitID, inv.LeaseID,
		inv.Category, inv.Description, inv.Month,
		inv.Rent, inv.ServiceFees, inv.Amount, inv.PaidAmount, inv.BalanceDue,
		inv.Status, inv.DueDate)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	row := r.db.QueryRow(ctx, baseSelectInvoice()+" WHERE id=$1", id)
	return scanInvoice(row)
}

func (r *invoiceRepo) ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE lease_id=$1 ORDER BY created_at", leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *invoiceRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func collectInvoices(rows pgx.Rows) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invoiceRepo) RentInvoiceExists(ctx context.Context, leaseID uuid.UUID, month string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE lease_id=$1 AND month=$2 AND category=$3 AND status<>$4
		)
	`, leaseID, month, models.InvoiceCategoryRent, models.InvoiceStatusVoid).Scan(&exists)
	return exists, err
}

func (r *invoiceRepo) DepositInvoiceExists(ctx context.Context, leaseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE lease_id=$1 AND category=$2 AND description=$3 AND status<>$4
		)
	`, leaseID, models.InvoiceCategoryService, models.DepositDescription, models.InvoiceStatusVoid).Scan(&exists)
	return exists, err
}

func (r *invoiceRepo) RepairZeroAmountRent(ctx context.Context, leaseID uuid.UUID, rent decimal.Decimal) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET rent=$1, amount=$1, balance_due=$1, updated_at=NOW()
		WHERE lease_id=$2 AND category=$3 AND paid_amount=0 AND amount=0
			AND status NOT IN ($4,$5)
	`, rent, leaseID, models.InvoiceCategoryRent,
		models.InvoiceStatusPaid, models.InvoiceStatusVoid)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
