package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

// RunTrigger identifies who started a batch run; it selects the invoice
// number prefix and the due day.
type RunTrigger string

const (
	TriggerScheduled  RunTrigger = "scheduled"
	TriggerAdminBatch RunTrigger = "admin_batch"
)

const (
	scheduledDueDay  = 5
	adminBatchDueDay = 10
)

const (
	skipReasonAlreadyExists = "Rent invoice already exists for this period."
	skipReasonInvalidRent   = "Lease has an invalid rent amount."
	skipReasonResidentHeld  = "Lease billing does not resolve to a billable tenant."
)

/*
RentRunService is the recurring invoice generator batch: one rent invoice
per Active in-term lease per calendar month, audited in RentRun/RentRunLog.
Re-running it within the same month only produces Skipped log entries.
*/
type RentRunService struct {
	db       repositories.DB
	leases   repositories.LeaseRepository
	invoices *InvoiceService
	users    repositories.UserRepository
	runs     repositories.RentRunRepository

	now func() time.Time
}

func NewRentRunService(
	db repositories.DB,
	leases repositories.LeaseRepository,
	invoices *InvoiceService,
	users repositories.UserRepository,
	runs repositories.RentRunRepository,
) *RentRunService {
	return &RentRunService{
		db:       db,
		leases:   leases,
		invoices: invoices,
		users:    users,
		runs:     runs,
		now:      time.Now,
	}
}

// Run executes one batch. Per-lease work happens in its own transaction so
// one failing lease is recorded as an Error log entry without aborting the
// rest.
func (s *RentRunService) Run(ctx context.Context, trigger RunTrigger) (*models.RentRun, error) {
	now := s.now()
	today := dateOnly(now)
	month := monthLabel(now)

	run := &models.RentRun{
		ID:          uuid.New(),
		Month:       month,
		Status:      models.RentRunStatusPending,
		TotalAmount: decimal.Zero,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	prefix, dueDay := InvoicePrefixAuto, scheduledDueDay
	if trigger == TriggerAdminBatch {
		prefix, dueDay = InvoicePrefixBatch, adminBatchDueDay
	}
	dueDate := time.Date(now.Year(), now.Month(), dueDay, 0, 0, 0, 0, now.Location())

	candidates, err := s.leases.ListActiveInTerm(ctx, today)
	if err != nil {
		run.Status = models.RentRunStatusFailed
		_ = s.runs.UpdateRun(ctx, run)
		return run, err
	}

	utils.Logger.Infof("Rent run %s (%s): %d candidate lease(s) for %s",
		run.ID, trigger, len(candidates), month)

	errored := 0
	for _, lease := range candidates {
		status, message, amount := s.processLease(ctx, lease, month, dueDate, prefix)
		switch status {
		case models.RentRunLogSuccess:
			run.CreatedCount++
			run.TotalAmount = run.TotalAmount.Add(amount)
		case models.RentRunLogSkipped:
			run.SkippedCount++
		case models.RentRunLogError:
			errored++
		}
		if logErr := s.runs.CreateLog(ctx, &models.RentRunLog{
			ID:      uuid.New(),
			RunID:   run.ID,
			LeaseID: lease.ID,
			Status:  status,
			Message: message,
		}); logErr != nil {
			utils.Logger.WithError(logErr).Errorf("Failed to record rent run log for lease %s", lease.ID)
		}
	}

	run.Status = models.RentRunStatusCompleted
	if errored > 0 && run.CreatedCount == 0 && run.SkippedCount == 0 {
		run.Status = models.RentRunStatusFailed
	}
	if err := s.runs.UpdateRun(ctx, run); err != nil {
		return run, err
	}

	utils.Logger.Infof("Rent run %s finished: %d created, %d skipped, %d errored, total %s",
		run.ID, run.CreatedCount, run.SkippedCount, errored, run.TotalAmount.StringFixed(2))
	return run, nil
}

func (s *RentRunService) processLease(
	ctx context.Context,
	lease *models.Lease,
	month string,
	dueDate time.Time,
	prefix string,
) (models.RentRunLogStatusType, string, decimal.Decimal) {
	holder, err := s.users.GetByID(ctx, lease.TenantID)
	if err != nil {
		return models.RentRunLogError, err.Error(), decimal.Zero
	}
	if holder == nil || (holder.Type == models.TenantTypeResident && holder.ParentID == nil) {
		return models.RentRunLogSkipped, skipReasonResidentHeld, decimal.Zero
	}
	if !lease.MonthlyRent.IsPositive() {
		return models.RentRunLogSkipped, skipReasonInvalidRent, decimal.Zero
	}

	var created *models.Invoice
	err = repositories.InTx(ctx, s.db, func(tx repositories.Tx) error {
		txInvoices := s.invoices.withTx(tx)

		exists, err := txInvoices.invoices.RentInvoiceExists(ctx, lease.ID, month)
		if err != nil {
			return err
		}
		if exists {
			return utils.ErrAlreadyInvoiced
		}

		created, err = s.invoices.CreateRentInvoiceInTx(ctx, tx, lease, month, dueDate, prefix)
		return err
	})
	if err == utils.ErrAlreadyInvoiced {
		return models.RentRunLogSkipped, skipReasonAlreadyExists, decimal.Zero
	}
	if err != nil {
		utils.Logger.WithError(err).Errorf("Rent run: failed to invoice lease %s", lease.ID)
		return models.RentRunLogError, err.Error(), decimal.Zero
	}
	return models.RentRunLogSuccess, "Invoice " + created.InvoiceNo + " created.", created.Amount
}

func (s *RentRunService) ListRuns(ctx context.Context, limit int) ([]*models.RentRun, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.runs.ListRuns(ctx, limit)
}

func (s *RentRunService) GetRun(ctx context.Context, runID uuid.UUID) (*models.RentRun, []*models.RentRunLog, error) {
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, utils.NewNotFoundError("rent run not found")
	}
	logs, err := s.runs.ListLogs(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, logs, nil
}
