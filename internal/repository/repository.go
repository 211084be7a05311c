package repository

import (
	"context"
	"errors"
	"time"

	"costume-rental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

type InventoryRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.InventoryItem, error)
	List(ctx context.Context, includeInactive bool) ([]domain.InventoryItem, error)

	// Reserve decrements available by qty only if the item is active and
	// available >= qty. It reports false when the guard rejected the update.
	Reserve(ctx context.Context, code string, qty int32) (bool, error)
	// Release increments available by qty only if the result stays within
	// total stock. It reports false when the guard rejected the update.
	Release(ctx context.Context, code string, qty int32) (bool, error)
}

// RentalFilter narrows ListRentals. Zero values mean no filter.
type RentalFilter struct {
	States     []domain.RentalState
	CustomerID int32
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.RentalOrder) error
	AddLine(ctx context.Context, line *domain.RentalLineItem) error
	GetByID(ctx context.Context, id int32) (*domain.RentalOrder, error)
	// GetByIDForUpdate locks the rental row until the surrounding unit of work ends.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.RentalOrder, error)
	ListLines(ctx context.Context, rentalID int32) ([]domain.RentalLineItem, error)
	List(ctx context.Context, filter RentalFilter) ([]domain.RentalOrder, error)
	CountByState(ctx context.Context, state domain.RentalState) (int32, error)

	// MarkReturned closes an open rental. It reports false if the rental was
	// not open any more.
	MarkReturned(ctx context.Context, id int32, returnedDate time.Time, penalty decimal.Decimal, returnedBy int32) (bool, error)
	// MarkOverdue flags every active rental due before now and returns their ids.
	MarkOverdue(ctx context.Context, now time.Time) ([]int32, error)
}

type SettingsRepository interface {
	GetDecimal(ctx context.Context, name string) (decimal.Decimal, error)
	SetDecimal(ctx context.Context, name string, value decimal.Decimal) error
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
	Exists(ctx context.Context, id int32) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	Exists(ctx context.Context, id int32) (bool, error)
}

// UnitOfWork exposes repositories bound to one open transaction.
type UnitOfWork interface {
	Inventory() InventoryRepository
	Rentals() RentalRepository
	Settings() SettingsRepository
}

// Transactor runs fn inside a transaction. The transaction commits only when
// fn returns nil and is rolled back on any error or panic.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
