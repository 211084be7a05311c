package service

import (
	"context"
	"errors"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"
)

type inventoryLedger struct {
	inventoryRepo repository.InventoryRepository
}

func NewInventoryLedger(inventoryRepo repository.InventoryRepository) InventoryLedger {
	return &inventoryLedger{inventoryRepo: inventoryRepo}
}

func (l *inventoryLedger) CheckAvailability(ctx context.Context, code string, qty int32) (int32, error) {
	item, err := lookupAvailable(ctx, l.inventoryRepo, code, qty)
	if item == nil {
		return 0, err
	}
	return item.Available, err
}

func (l *inventoryLedger) Reserve(ctx context.Context, code string, qty int32) error {
	if err := reserveIn(ctx, l.inventoryRepo, code, qty); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Stock reserved", "item_code", code, "qty", qty)
	return nil
}

func (l *inventoryLedger) Release(ctx context.Context, code string, qty int32) error {
	if err := releaseIn(ctx, l.inventoryRepo, code, qty); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Stock released", "item_code", code, "qty", qty)
	return nil
}

func (l *inventoryLedger) GetItem(ctx context.Context, code string) (*domain.InventoryItem, error) {
	return getItem(ctx, l.inventoryRepo, code)
}

func (l *inventoryLedger) ListItems(ctx context.Context, includeInactive bool) ([]domain.InventoryItem, error) {
	items, err := l.inventoryRepo.List(ctx, includeInactive)
	if err != nil {
		return nil, domain.PersistenceFailure("list inventory", err)
	}
	return items, nil
}

func getItem(ctx context.Context, items repository.InventoryRepository, code string) (*domain.InventoryItem, error) {
	item, err := items.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Errorf(domain.ErrItemNotFound, "item %q does not exist", code)
	}
	if err != nil {
		return nil, domain.PersistenceFailure("load item "+code, err)
	}
	return item, nil
}

// lookupAvailable loads the item and checks that qty units could be reserved.
// The item is returned alongside stock and state errors so callers can report
// the current available count.
func lookupAvailable(ctx context.Context, items repository.InventoryRepository, code string, qty int32) (*domain.InventoryItem, error) {
	if qty <= 0 {
		return nil, domain.Errorf(domain.ErrInvalidQuantity, "quantity for item %q must be greater than zero, got %d", code, qty)
	}
	item, err := getItem(ctx, items, code)
	if err != nil {
		return nil, err
	}
	if !item.IsActive() {
		return item, domain.Errorf(domain.ErrItemInactive, "item %q is inactive", code)
	}
	if item.Available < qty {
		return item, domain.Errorf(domain.ErrInsufficientStock, "insufficient stock for item %q: available %d, requested %d", code, item.Available, qty)
	}
	return item, nil
}

// reserveIn decrements availability with a single guarded update, so two
// concurrent reservations can never drive available below zero.
func reserveIn(ctx context.Context, items repository.InventoryRepository, code string, qty int32) error {
	if qty <= 0 {
		return domain.Errorf(domain.ErrInvalidQuantity, "quantity for item %q must be greater than zero, got %d", code, qty)
	}
	ok, err := items.Reserve(ctx, code, qty)
	if err != nil {
		return domain.PersistenceFailure("reserve "+code, err)
	}
	if ok {
		return nil
	}

	// The guard rejected the update; find out why.
	if _, err := lookupAvailable(ctx, items, code, qty); err != nil {
		return err
	}
	return domain.Errorf(domain.ErrInsufficientStock, "insufficient stock for item %q: requested %d", code, qty)
}

// releaseIn returns qty units to availability. It refuses to push available
// above total stock, which would mean the units were already released.
func releaseIn(ctx context.Context, items repository.InventoryRepository, code string, qty int32) error {
	if qty <= 0 {
		return domain.Errorf(domain.ErrInvalidQuantity, "quantity for item %q must be greater than zero, got %d", code, qty)
	}
	ok, err := items.Release(ctx, code, qty)
	if err != nil {
		return domain.PersistenceFailure("release "+code, err)
	}
	if ok {
		return nil
	}

	item, err := getItem(ctx, items, code)
	if err != nil {
		return err
	}
	return domain.Errorf(domain.ErrOverRelease, "releasing %d of item %q would exceed total stock %d (available %d)", qty, code, item.TotalStock, item.Available)
}
