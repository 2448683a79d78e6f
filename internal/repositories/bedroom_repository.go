package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayware/leasing-service/internal/models"
)

type BedroomRepository interface {
	WithTx(tx Tx) BedroomRepository

	CreateMany(ctx context.Context, bedrooms []*models.Bedroom) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bedroom, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Bedroom, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BedroomStatusType) error
	// UpdateStatusByUnitID resets every bedroom of a unit in one statement;
	// used when a full-unit lease takes over or releases the whole unit.
	UpdateStatusByUnitID(ctx context.Context, unitID uuid.UUID, status models.BedroomStatusType) error
}

type bedroomRepo struct {
	db DB
}

func NewBedroomRepository(db DB) BedroomRepository {
	return &bedroomRepo{db: db}
}

func (r *bedroomRepo) WithTx(tx Tx) BedroomRepository {
	return &bedroomRepo{db: tx}
}

func baseSelectBedroom() string {
	return `
		SELECT id, unit_id, bedroom_number, status, created_at
		FROM bedrooms`
}

func scanBedroom(row pgx.Row) (*models.Bedroom, error) {
	var b models.Bedroom
	if err := row.Scan(
		&b.ID, &b.UnitID, &b.BedroomNumber, &b.Status, &b.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *bedroomRepo) CreateMany(ctx context.Context, bedrooms []*models.Bedroom) error {
	for _, b := range bedrooms {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO bedrooms (id, unit_id, bedroom_number, status, created_at)
			VALUES ($1,$2,$3,$4, NOW())
		`, b.ID, b.UnitID, b.BedroomNumber, b.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *bedroomRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bedroom, error) {
	row := r.db.QueryRow(ctx, baseSelectBedroom()+" WHERE id=$1", id)
	return scanBedroom(row)
}

func (r *bedroomRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Bedroom, error) {
	rows, err := r.db.Query(ctx, baseSelectBedroom()+" WHERE unit_id=$1 ORDER BY bedroom_number", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Bedroom
	for rows.Next() {
		b, err := scanBedroom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *bedroomRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BedroomStatusType) error {
	_, err := r.db.Exec(ctx, `
		UPDATE bedrooms SET status=$1 WHERE id=$2
	`, status, id)
	return err
}

func (r *bedroomRepo) UpdateStatusByUnitID(ctx context.Context, unitID uuid.UUID, status models.BedroomStatusType) error {
	_, err := r.db.Exec(ctx, `
		UPDATE bedrooms SET status=$1 WHERE unit_id=$2
	`, status, unitID)
	return err
}
