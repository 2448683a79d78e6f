package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/utils"
)

type LeaseRepository interface {
	WithTx(tx Tx) LeaseRepository

	Create(ctx context.Context, l *models.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	Update(ctx context.Context, l *models.Lease) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.LeaseStatusType) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUnitIDWithStatuses returns the unit's leases in the given states
	// with TenantType joined in from users.
	ListByUnitIDWithStatuses(ctx context.Context, unitID uuid.UUID, statuses []models.LeaseStatusType) ([]*models.Lease, error)
	FindDraft(ctx context.Context, tenantID, unitID uuid.UUID, bedroomID *uuid.UUID) (*models.Lease, error)
	FindActiveByBedroomID(ctx context.Context, bedroomID uuid.UUID) (*models.Lease, error)

	// ListExpired returns Active leases whose end date is strictly before cutoff.
	ListExpired(ctx context.Context, cutoff time.Time) ([]*models.Lease, error)
	// ListActiveInTerm returns Active leases whose term covers the given date.
	ListActiveInTerm(ctx context.Context, on time.Time) ([]*models.Lease, error)
	HasOtherActiveByTenant(ctx context.Context, tenantID, excludeLeaseID uuid.UUID) (bool, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error)
	ListAll(ctx context.Context) ([]*models.Lease, error)
}

type leaseRepo struct {
	*BaseVersionedRepo[*models.Lease]
	db DB
}

func NewLeaseRepository(db DB) LeaseRepository {
	r := &leaseRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectLease()+" WHERE l.id=$1", scanLease)
	return r
}

func (r *leaseRepo) WithTx(tx Tx) LeaseRepository {
	return NewLeaseRepository(tx)
}

// Every lease read joins users so callers can discriminate company and
// individual tenancies without a second query.
func baseSelectLease() string {
	return `
		SELECT l.id, l.tenant_id, l.unit_id, l.bedroom_id, l.status, l.lease_type,
		l.start_date, l.end_date, l.monthly_rent, l.security_deposit,
		u.type, l.created_at, l.updated_at, l.row_version
		FROM leases l
		JOIN users u ON u.id = l.tenant_id`
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	if err := row.Scan(
		&l.ID, &l.TenantID, &l.UnitID, &l.BedroomID,
		&l.Status, &l.LeaseType,
		&l.StartDate, &l.EndDate, &l.MonthlyRent, &l.SecurityDeposit,
		&l.TenantType, &l.CreatedAt, &l.UpdatedAt, &l.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

/* ---------- writes ---------- */

func (r *leaseRepo) Create(ctx context.Context, l *models.Lease) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO leases (
			id, tenant_id, unit_id, bedroom_id, status, lease_type,
			start_date, end_date, monthly_rent, security_deposit,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW(), 1)
	`, l.ID, l.TenantID, l.UnitID, l.BedroomID, l.Status, l.LeaseType,
		l.StartDate, l.EndDate, l.MonthlyRent, l.SecurityDeposit)
	return err
}

func (r *leaseRepo) Update(ctx context.Context, l *models.Lease) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE leases
		SET bedroom_id=$1, status=$2, lease_type=$3,
			start_date=$4, end_date=$5, monthly_rent=$6, security_deposit=$7,
			row_version=row_version+1, updated_at=NOW()
		WHERE id=$8 AND row_version=$9
	`, l.BedroomID, l.Status, l.LeaseType,
		l.StartDate, l.EndDate, l.MonthlyRent, l.SecurityDeposit,
		l.ID, l.RowVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrRowVersionConflict
	}
	l.RowVersion++
	return nil
}

func (r *leaseRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.LeaseStatusType) error {
	_, err := r.db.Exec(ctx, `
		UPDATE leases SET status=$1, row_version=row_version+1, updated_at=NOW() WHERE id=$2
	`, status, id)
	return err
}

func (r *leaseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM leases WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNoRowsUpdated
	}
	return nil
}

/* ---------- reads ---------- */

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *leaseRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	// FOR UPDATE OF l keeps the users side of the join unlocked.
	row := r.db.QueryRow(ctx, baseSelectLease()+" WHERE l.id=$1 FOR UPDATE OF l", id)
	return scanLease(row)
}

func (r *leaseRepo) ListByUnitIDWithStatuses(ctx context.Context, unitID uuid.UUID, statuses []models.LeaseStatusType) ([]*models.Lease, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE l.unit_id=$1 AND l.status = ANY($2)", unitID, ss)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepo) FindDraft(ctx context.Context, tenantID, unitID uuid.UUID, bedroomID *uuid.UUID) (*models.Lease, error) {
	var row pgx.Row
	if bedroomID == nil {
		row = r.db.QueryRow(ctx,
			baseSelectLease()+` WHERE l.tenant_id=$1 AND l.unit_id=$2
			AND l.bedroom_id IS NULL AND l.status=$3`,
			tenantID, unitID, models.LeaseStatusDraft)
	} else {
		row = r.db.QueryRow(ctx,
			baseSelectLease()+` WHERE l.tenant_id=$1 AND l.unit_id=$2
			AND l.bedroom_id=$3 AND l.status=$4`,
			tenantID, unitID, *bedroomID, models.LeaseStatusDraft)
	}
	return scanLease(row)
}

func (r *leaseRepo) FindActiveByBedroomID(ctx context.Context, bedroomID uuid.UUID) (*models.Lease, error) {
	row := r.db.QueryRow(ctx,
		baseSelectLease()+" WHERE l.bedroom_id=$1 AND l.status=$2",
		bedroomID, models.LeaseStatusActive)
	return scanLease(row)
}

func (r *leaseRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE l.status=$1 AND l.end_date < $2",
		models.LeaseStatusActive, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepo) ListActiveInTerm(ctx context.Context, on time.Time) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE l.status=$1 AND l.start_date <= $2 AND l.end_date >= $2",
		models.LeaseStatusActive, on)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepo) HasOtherActiveByTenant(ctx context.Context, tenantID, excludeLeaseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leases
			WHERE tenant_id=$1 AND status=$2 AND id<>$3
		)
	`, tenantID, models.LeaseStatusActive, excludeLeaseID).Scan(&exists)
	return exists, err
}

func (r *leaseRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE l.tenant_id=$1 ORDER BY l.start_date DESC", tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepo) ListAll(ctx context.Context) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, baseSelectLease()+" ORDER BY l.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func collectLeases(rows pgx.Rows) ([]*models.Lease, error) {
	var out []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
