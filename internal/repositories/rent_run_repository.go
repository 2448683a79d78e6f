package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayware/leasing-service/internal/models"
)

type RentRunRepository interface {
	WithTx(tx Tx) RentRunRepository

	CreateRun(ctx context.Context, run *models.RentRun) error
	UpdateRun(ctx context.Context, run *models.RentRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.RentRun, error)
	ListRuns(ctx context.Context, limit int) ([]*models.RentRun, error)

	CreateLog(ctx context.Context, log *models.RentRunLog) error
	ListLogs(ctx context.Context, runID uuid.UUID) ([]*models.RentRunLog, error)
}

type rentRunRepo struct {
	db DB
}

func NewRentRunRepository(db DB) RentRunRepository {
	return &rentRunRepo{db: db}
}

func (r *rentRunRepo) WithTx(tx Tx) RentRunRepository {
	return &rentRunRepo{db: tx}
}

func (r *rentRunRepo) CreateRun(ctx context.Context, run *models.RentRun) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rent_runs (id, month, status, created_count, skipped_count, total_amount, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW())
	`, run.ID, run.Month, run.Status, run.CreatedCount, run.SkippedCount, run.TotalAmount)
	return err
}

func (r *rentRunRepo) UpdateRun(ctx context.Context, run *models.RentRun) error {
	_, err := r.db.Exec(ctx, `
		UPDATE rent_runs
		SET status=$1, created_count=$2, skipped_count=$3, total_amount=$4, updated_at=NOW()
		WHERE id=$5
	`, run.Status, run.CreatedCount, run.SkippedCount, run.TotalAmount, run.ID)
	return err
}

func baseSelectRentRun() string {
	return `
		SELECT id, month, status, created_count, skipped_count, total_amount, created_at, updated_at
		FROM rent_runs`
}

func scanRentRun(row pgx.Row) (*models.RentRun, error) {
	var run models.RentRun
	if err := row.Scan(
		&run.ID, &run.Month, &run.Status,
		&run.CreatedCount, &run.SkippedCount, &run.TotalAmount,
		&run.CreatedAt, &run.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *rentRunRepo) GetRun(ctx context.Context, id uuid.UUID) (*models.RentRun, error) {
	row := r.db.QueryRow(ctx, baseSelectRentRun()+" WHERE id=$1", id)
	return scanRentRun(row)
}

func (r *rentRunRepo) ListRuns(ctx context.Context, limit int) ([]*models.RentRun, error) {
	rows, err := r.db.Query(ctx, baseSelectRentRun()+" ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RentRun
	for rows.Next() {
		run, err := scanRentRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *rentRunRepo) CreateLog(ctx context.Context, log *models.RentRunLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rent_run_logs (id, run_id, lease_id, status, message, created_at)
		VALUES ($1,$2,$3,$4,$5, NOW())
	`, log.ID, log.RunID, log.LeaseID, log.Status, log.Message)
	return err
}

func (r *rentRunRepo) ListLogs(ctx context.Context, runID uuid.UUID) ([]*models.RentRunLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, run_id, lease_id, status, message, created_at
		FROM rent_run_logs WHERE run_id=$1 ORDER BY created_at
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RentRunLog
	for rows.Next() {
		var l models.RentRunLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.LeaseID, &l.Status, &l.Message, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
