package jobs

import (
	"context"
	"errors"

	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"
)

// MarkOverdueRentals is the cron entry point for the overdue sweep
func (jr *JobRunner) MarkOverdueRentals() {
	jr.scheduled(jr.RunMarkOverdueRentals)()
}

// RunMarkOverdueRentals marks every ACTIVE rental whose due date has passed
// as OVERDUE. Penalties are not touched; they are computed at return.
func (jr *JobRunner) RunMarkOverdueRentals(ctx context.Context) error {
	return jr.runWithRecovery(ctx, JobMarkOverdueRentals, func(ctx context.Context) error {
		now := jr.now()
		count, err := jr.services.Sweeper.SweepOverdue(ctx, now)
		if err != nil {
			return err
		}
		if jr.metrics != nil {
			jr.metrics.RentalsMarkedOverdue.Add(float64(count))
		}
		logger.FromContext(ctx).Info("Marked rentals as overdue", "count", count, "as_of", now)
		return nil
	})
}

// RefreshPenaltyRate is the cron entry point for reloading the penalty rate
func (jr *JobRunner) RefreshPenaltyRate() {
	jr.scheduled(jr.RunRefreshPenaltyRate)()
}

// RunRefreshPenaltyRate reloads the stored penalty rate so updates made by
// another process become visible here.
func (jr *JobRunner) RunRefreshPenaltyRate(ctx context.Context) error {
	return jr.runWithRecovery(ctx, JobRefreshPenaltyRate, func(ctx context.Context) error {
		if jr.services.Penalty == nil {
			return nil
		}
		err := jr.services.Penalty.Refresh(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			logger.FromContext(ctx).Warn("Penalty rate not stored, keeping current rate")
		} else if err != nil {
			return err
		}
		rate := jr.services.Penalty.PerDay()
		if jr.metrics != nil {
			jr.metrics.SetPenaltyRate(rate)
		}
		logger.FromContext(ctx).Debug("Penalty rate refreshed", "penalty_per_day", rate.StringFixed(2))
		return nil
	})
}
