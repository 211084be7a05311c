package http

import (
	"context"
	"time"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) RegisterRental(ctx context.Context, customerID, clerkID int32, lines []domain.LineRequest, requestedDays int32) (*domain.RentalOrder, error) {
	args := m.Called(ctx, customerID, clerkID, lines, requestedDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}

func (m *MockRentalService) ReturnRental(ctx context.Context, rentalID, actorID int32) (*domain.Settlement, error) {
	args := m.Called(ctx, rentalID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockRentalService) UpdatePenaltyRate(ctx context.Context, rate decimal.Decimal) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRentalService) PenaltyRate() decimal.Decimal {
	args := m.Called()
	return args.Get(0).(decimal.Decimal)
}

func (m *MockRentalService) GetRental(ctx context.Context, rentalID int32) (*domain.RentalOrder, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}

func (m *MockRentalService) ListRentals(ctx context.Context, filter repository.RentalFilter) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}

func (m *MockRentalService) CountActive(ctx context.Context) (int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockRentalService) EstimatePenalty(ctx context.Context, rentalID int32, at time.Time) (*domain.PenaltyEstimate, error) {
	args := m.Called(ctx, rentalID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PenaltyEstimate), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) CheckAvailability(ctx context.Context, code string, qty int32) (int32, error) {
	args := m.Called(ctx, code, qty)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockLedger) Reserve(ctx context.Context, code string, qty int32) error {
	args := m.Called(ctx, code, qty)
	return args.Error(0)
}

func (m *MockLedger) Release(ctx context.Context, code string, qty int32) error {
	args := m.Called(ctx, code, qty)
	return args.Error(0)
}

func (m *MockLedger) GetItem(ctx context.Context, code string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockLedger) ListItems(ctx context.Context, includeInactive bool) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error {
	return p.err
}

type MockActors struct {
	mock.Mock
}

func (m *MockActors) Exists(ctx context.Context, actorID int32) (bool, error) {
	args := m.Called(ctx, actorID)
	return args.Bool(0), args.Error(1)
}
