package service

import (
	"context"
	"time"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"
)

type overdueSweeper struct {
	rentalRepo repository.RentalRepository
}

func NewOverdueSweeper(rentalRepo repository.RentalRepository) OverdueSweeper {
	return &overdueSweeper{rentalRepo: rentalRepo}
}

// SweepOverdue flags every ACTIVE rental whose due date is before now as
// OVERDUE and returns how many changed. Running it twice with the same now
// changes nothing the second time.
func (s *overdueSweeper) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.rentalRepo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, domain.PersistenceFailure("mark overdue rentals", err)
	}
	if len(ids) > 0 {
		logger.FromContext(ctx).Info("Rentals marked overdue", "count", len(ids), "rental_ids", ids)
	}
	return len(ids), nil
}
