package service

import (
	"context"
	"time"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// InventoryLedger guards 0 <= available <= total stock for every item.
type InventoryLedger interface {
	// CheckAvailability returns the item's current available count and a nil
	// error when qty units could be reserved right now.
	CheckAvailability(ctx context.Context, code string, qty int32) (int32, error)
	Reserve(ctx context.Context, code string, qty int32) error
	Release(ctx context.Context, code string, qty int32) error
	GetItem(ctx context.Context, code string) (*domain.InventoryItem, error)
	ListItems(ctx context.Context, includeInactive bool) ([]domain.InventoryItem, error)
}

type RentalService interface {
	RegisterRental(ctx context.Context, customerID, clerkID int32, lines []domain.LineRequest, requestedDays int32) (*domain.RentalOrder, error)
	ReturnRental(ctx context.Context, rentalID, actorID int32) (*domain.Settlement, error)
	UpdatePenaltyRate(ctx context.Context, rate decimal.Decimal) error
	PenaltyRate() decimal.Decimal
	GetRental(ctx context.Context, rentalID int32) (*domain.RentalOrder, error)
	ListRentals(ctx context.Context, filter repository.RentalFilter) ([]domain.RentalOrder, error)
	CountActive(ctx context.Context) (int32, error)
	EstimatePenalty(ctx context.Context, rentalID int32, at time.Time) (*domain.PenaltyEstimate, error)
}

type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

type CustomerDirectory interface {
	Exists(ctx context.Context, customerID int32) (bool, error)
	Find(ctx context.Context, customerID int32) (*domain.Customer, error)
}

type ActorDirectory interface {
	Exists(ctx context.Context, actorID int32) (bool, error)
}
