package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayware/leasing-service/internal/models"
)

type UserRepository interface {
	WithTx(tx Tx) UserRepository

	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	ListResidentsByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error

	// SetAssignments points the user at their current residency.
	SetAssignments(ctx context.Context, id uuid.UUID, leaseID, unitID uuid.UUID, bedroomID *uuid.UUID, propertyID uuid.UUID) error
	// ClearAssignments removes residency pointers when the last Active lease ends.
	ClearAssignments(ctx context.Context, id uuid.UUID) error
	// DetachResidentsFromLease clears residency for every resident attached to
	// a billable tenant through the given lease.
	DetachResidentsFromLease(ctx context.Context, leaseID uuid.UUID) error

	SetInvite(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) WithTx(tx Tx) UserRepository {
	return &userRepo{db: tx}
}

func baseSelectUser() string {
	return `
		SELECT id, role, type, first_name, last_name, email, phone, password,
		parent_id, lease_id, unit_id, bedroom_id, property_id,
		invite_token, invite_expires, created_at, updated_at
		FROM users`
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID, &u.Role, &u.Type, &u.FirstName, &u.LastName,
		&u.Email, &u.Phone, &u.Password,
		&u.ParentID, &u.LeaseID, &u.UnitID, &u.BedroomID, &u.PropertyID,
		&u.InviteToken, &u.InviteExpires,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, role, type, first_name, last_name, email, phone, password,
			parent_id, lease_id, unit_id, bedroom_id, property_id,
			invite_token, invite_expires, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, NOW(), NOW())
	`, u.ID, u.Role, u.Type, u.FirstName, u.LastName, u.Email, u.Phone, u.Password,
		u.ParentID, u.LeaseID, u.UnitID, u.BedroomID, u.PropertyID,
		u.InviteToken, u.InviteExpires)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE id=$1", id)
	return scanUser(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE email=$1", email)
	return scanUser(row)
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, baseSelectUser()+" WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *userRepo) ListResidentsByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, baseSelectUser()+" WHERE type=$1 AND lease_id=$2",
		models.TenantTypeResident, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET first_name=$1, last_name=$2, email=$3, phone=$4, type=$5,
			parent_id=$6, updated_at=NOW()
		WHERE id=$7
	`, u.FirstName, u.LastName, u.Email, u.Phone, u.Type, u.ParentID, u.ID)
	return err
}

func (r *userRepo) SetAssignments(ctx context.Context, id uuid.UUID, leaseID, unitID uuid.UUID, bedroomID *uuid.UUID, propertyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET lease_id=$1, unit_id=$2, bedroom_id=$3, property_id=$4, updated_at=NOW()
		WHERE id=$5
	`, leaseID, unitID, bedroomID, propertyID, id)
	return err
}

func (r *userRepo) ClearAssignments(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET lease_id=NULL, unit_id=NULL, bedroom_id=NULL, property_id=NULL, updated_at=NOW()
		WHERE id=$1
	`, id)
	return err
}

func (r *userRepo) DetachResidentsFromLease(ctx context.Context, leaseID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET lease_id=NULL, unit_id=NULL, bedroom_id=NULL, property_id=NULL, updated_at=NOW()
		WHERE type=$1 AND lease_id=$2
	`, models.TenantTypeResident, leaseID)
	return err
}

func (r *userRepo) SetInvite(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET invite_token=$1, invite_expires=$2, updated_at=NOW() WHERE id=$3
	`, token, expires, id)
	return err
}

func (r *userRepo) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password=$1, updated_at=NOW() WHERE id=$2
	`, hash, id)
	return err
}
