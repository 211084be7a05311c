package postgres

import (
	"context"

	"costume-rental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type settingsRepository struct {
	db DBTX
}

func NewSettingsRepository(db DBTX) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetDecimal(ctx context.Context, name string) (decimal.Decimal, error) {
	var value decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = $1`, name).Scan(&value)
	if err != nil {
		return decimal.Zero, notFound(err)
	}
	return value, nil
}

func (r *settingsRepository) SetDecimal(ctx context.Context, name string, value decimal.Decimal) error {
	query := `INSERT INTO settings (name, value, updated_on) VALUES ($1, $2, NOW())
	          ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_on = EXCLUDED.updated_on`
	_, err := r.db.ExecContext(ctx, query, name, value)
	return err
}
