package services

import (
	"context"
	"time"

	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

/*
LeaseExpiryService is the daily sweep: every Active lease whose end date
has passed is expired through the state machine, one transaction per lease
so a single bad row never blocks the rest.
*/
type LeaseExpiryService struct {
	leases  repositories.LeaseRepository
	machine *LeaseService

	now func() time.Time
}

func NewLeaseExpiryService(leases repositories.LeaseRepository, machine *LeaseService) *LeaseExpiryService {
	return &LeaseExpiryService{leases: leases, machine: machine, now: time.Now}
}

// ExpireDueLeases returns how many leases were expired and how many failed.
func (s *LeaseExpiryService) ExpireDueLeases(ctx context.Context) (expired, failed int, err error) {
	today := dateOnly(s.now())

	due, err := s.leases.ListExpired(ctx, today)
	if err != nil {
		return 0, 0, err
	}
	if len(due) == 0 {
		return 0, 0, nil
	}

	utils.Logger.Infof("Lease expiry sweep: %d lease(s) past end date", len(due))

	for _, lease := range due {
		if expErr := s.machine.ExpireLease(ctx, lease.ID); expErr != nil {
			failed++
			utils.Logger.WithError(expErr).Errorf("Failed to expire lease %s", lease.ID)
			continue
		}
		expired++
	}

	utils.Logger.Infof("Lease expiry sweep finished: %d expired, %d failed", expired, failed)
	return expired, failed, nil
}
