// Package seed loads development fixtures (catalog, customers and clerks)
// into an empty or partially populated database.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"costume-rental-backend/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Item struct {
	Code                 string `yaml:"code" validate:"required,max=64"`
	Description          string `yaml:"description"`
	TotalStock           int32  `yaml:"total_stock" validate:"gte=0"`
	Available            *int32 `yaml:"available"` // defaults to total_stock
	UnitSalePrice        string `yaml:"unit_sale_price" validate:"required,numeric"`
	UnitRentalRatePerDay string `yaml:"unit_rental_rate_per_day" validate:"required,numeric"`
	Status               string `yaml:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type Customer struct {
	Name  string `yaml:"name" validate:"required"`
	Phone string `yaml:"phone"`
	Email string `yaml:"email" validate:"required,email"`
}

type User struct {
	Username string `yaml:"username" validate:"required,max=64"`
	Name     string `yaml:"name" validate:"required"`
}

type Data struct {
	Inventory []Item     `yaml:"inventory" validate:"dive"`
	Customers []Customer `yaml:"customers" validate:"dive"`
	Users     []User     `yaml:"users" validate:"dive"`
}

// Result counts the rows actually inserted. Rows that already existed are
// left alone and not counted.
type Result struct {
	Items     int64
	Customers int64
	Users     int64
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates seed YAML. Prices must be non-negative and
// available stock must lie within [0, total_stock].
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := validate.Struct(&data); err != nil {
		return nil, fmt.Errorf("invalid seed data: %w", err)
	}

	for i := range data.Inventory {
		item := &data.Inventory[i]
		if item.Status == "" {
			item.Status = "ACTIVE"
		}
		if item.Available == nil {
			total := item.TotalStock
			item.Available = &total
		}
		if *item.Available < 0 || *item.Available > item.TotalStock {
			return nil, fmt.Errorf("item %s: available %d outside [0, %d]", item.Code, *item.Available, item.TotalStock)
		}
		for field, v := range map[string]string{"unit_sale_price": item.UnitSalePrice, "unit_rental_rate_per_day": item.UnitRentalRatePerDay} {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("item %s: invalid %s %q: %w", item.Code, field, v, err)
			}
			if d.IsNegative() {
				return nil, fmt.Errorf("item %s: %s cannot be negative", item.Code, field)
			}
		}
	}
	return &data, nil
}

// Apply inserts data in one transaction. Existing items (by code), customers
// (by email) and users (by username) are skipped, so Apply can be re-run.
func Apply(ctx context.Context, db *sql.DB, data *Data) (*Result, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var res Result
	for _, item := range data.Inventory {
		n, err := execCount(ctx, tx, `
			INSERT INTO inventory (code, description, total_stock, available, unit_sale_price, unit_rental_rate, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO NOTHING`,
			item.Code, item.Description, item.TotalStock, *item.Available, item.UnitSalePrice, item.UnitRentalRatePerDay, item.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to insert item %s: %w", item.Code, err)
		}
		res.Items += n
	}

	for _, c := range data.Customers {
		n, err := execCount(ctx, tx, `
			INSERT INTO customers (name, phone, email)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (SELECT 1 FROM customers WHERE email = $3)`,
			c.Name, c.Phone, c.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to insert customer %s: %w", c.Email, err)
		}
		res.Customers += n
	}

	for _, u := range data.Users {
		n, err := execCount(ctx, tx, `
			INSERT INTO users (username, name)
			VALUES ($1, $2)
			ON CONFLICT (username) DO NOTHING`,
			u.Username, u.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to insert user %s: %w", u.Username, err)
		}
		res.Users += n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Info("Seed data applied", "items", res.Items, "customers", res.Customers, "users", res.Users)
	return &res, nil
}

func execCount(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
