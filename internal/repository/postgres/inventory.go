package postgres

import (
	"context"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"
)

type inventoryRepository struct {
	db DBTX
}

func NewInventoryRepository(db DBTX) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetByCode(ctx context.Context, code string) (*domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE code = $1`
	return scanInventoryItem(r.db.QueryRowContext(ctx, query, code))
}

func (r *inventoryRepository) List(ctx context.Context, includeInactive bool) ([]domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory`
	if !includeInactive {
		query += ` WHERE status = 'ACTIVE'`
	}
	query += ` ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *inventoryRepository) Reserve(ctx context.Context, code string, qty int32) (bool, error) {
	query := `UPDATE inventory SET available = available - $1, updated_on = NOW()
	          WHERE code = $2 AND status = 'ACTIVE' AND available >= $1`
	logger.DatabaseCall("inventory.Reserve", query, "code", code, "qty", qty)
	res, err := r.db.ExecContext(ctx, query, qty, code)
	if err != nil {
		logger.DatabaseResult("inventory.Reserve", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("inventory.Reserve", n, err)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *inventoryRepository) Release(ctx context.Context, code string, qty int32) (bool, error) {
	query := `UPDATE inventory SET available = available + $1, updated_on = NOW()
	          WHERE code = $2 AND available + $1 <= total_stock`
	logger.DatabaseCall("inventory.Release", query, "code", code, "qty", qty)
	res, err := r.db.ExecContext(ctx, query, qty, code)
	if err != nil {
		logger.DatabaseResult("inventory.Release", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("inventory.Release", n, err)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
