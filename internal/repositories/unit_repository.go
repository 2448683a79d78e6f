package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/stayware/leasing-service/internal/models"
)

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	WithTx(tx Tx) UnitRepository

	Create(ctx context.Context, u *models.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	// GetByIDForUpdate row-locks the unit for the remainder of the
	// transaction; concurrent lease transitions for the same unit
	// serialize on it.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	ListByPropertyID(ctx context.Context, propID uuid.UUID) ([]*models.Unit, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UnitStatusType) error
	UpdateStatusAndMode(ctx context.Context, id uuid.UUID, status models.UnitStatusType, mode models.RentalModeType) error
	// UpdateWithRetry applies mutate under optimistic locking; used by unit
	// detail edits which run outside a lease transaction.
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	*BaseVersionedRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	r := &unitRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectUnit()+" WHERE id=$1", scanUnit)
	return r
}

func (r *unitRepo) WithTx(tx Tx) UnitRepository {
	return NewUnitRepository(tx)
}

func baseSelectUnit() string {
	return `
		SELECT id, property_id, unit_number, rental_mode, status, bedroom_count,
		created_at, updated_at, row_version
		FROM units`
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(
		&u.ID, &u.PropertyID, &u.UnitNumber,
		&u.RentalMode, &u.Status, &u.BedroomCount,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, property_id, unit_number, rental_mode, status, bedroom_count,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW(), 1)
	`, u.ID, u.PropertyID, u.UnitNumber, u.RentalMode, u.Status, u.BedroomCount)
	return err
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *unitRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	row := r.db.QueryRow(ctx, baseSelectUnit()+" WHERE id=$1 FOR UPDATE", id)
	return scanUnit(row)
}

func (r *unitRepo) ListByPropertyID(ctx context.Context, propID uuid.UUID) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, baseSelectUnit()+" WHERE property_id=$1 ORDER BY unit_number", propID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

/* ---------- updates ---------- */

func (r *unitRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UnitStatusType) error {
	_, err := r.db.Exec(ctx, `
		UPDATE units SET status=$1, updated_at=NOW() WHERE id=$2
	`, status, id)
	return err
}

func (r *unitRepo) UpdateStatusAndMode(ctx context.Context, id uuid.UUID, status models.UnitStatusType, mode models.RentalModeType) error {
	_, err := r.db.Exec(ctx, `
		UPDATE units SET status=$1, rental_mode=$2, updated_at=NOW() WHERE id=$3
	`, status, mode, id)
	return err
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.updateIfVersion)
}

func (r *unitRepo) updateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE units
		SET unit_number=$1, rental_mode=$2, status=$3, bedroom_count=$4,
			row_version=row_version+1, updated_at=NOW()
		WHERE id=$5 AND row_version=$6
	`, u.UnitNumber, u.RentalMode, u.Status, u.BedroomCount, u.ID, expected)
}
