package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayware/leasing-service/internal/models"
)

type PropertyRepository interface {
	WithTx(tx Tx) PropertyRepository

	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListAll(ctx context.Context) ([]*models.Property, error)
}

type propertyRepo struct {
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) WithTx(tx Tx) PropertyRepository {
	return &propertyRepo{db: tx}
}

func baseSelectProperty() string {
	return `
		SELECT id, property_name, civic_number, address, city, state, zip_code, created_at
		FROM properties`
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	if err := row.Scan(
		&p.ID, &p.PropertyName, &p.CivicNumber,
		&p.Address, &p.City, &p.State, &p.ZipCode,
		&p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO properties (
			id, property_name, civic_number, address, city, state, zip_code, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7, NOW())
	`, p.ID, p.PropertyName, p.CivicNumber, p.Address, p.City, p.State, p.ZipCode)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row := r.db.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1", id)
	return scanProperty(row)
}

func (r *propertyRepo) ListAll(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" ORDER BY property_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
