package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.RentalOrder) error {
	logger.EnterMethod("rentalRepository.Create", "customerID", rt.CustomerID, "clerkID", rt.ClerkID)

	query := `INSERT INTO rentals (customer_id, clerk_id, start_date, due_date, requested_days, rental_total, deposit, penalty, state, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		rt.CustomerID, rt.ClerkID, rt.StartDate, rt.DueDate, rt.RequestedDays,
		rt.RentalTotal, rt.Deposit, rt.Penalty, rt.State, time.Now(),
	).Scan(&rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "customerID", rt.CustomerID)
		return err
	}

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) AddLine(ctx context.Context, l *domain.RentalLineItem) error {
	query := `INSERT INTO rental_lines (rental_id, item_code, quantity, unit_rental_rate, subtotal)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, l.RentalID, l.ItemCode, l.Quantity, l.UnitRentalRatePerDay, l.Subtotal)
	return err
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.RentalOrder, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return scanRental(r.db.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.RentalOrder, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	return scanRental(r.db.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) ListLines(ctx context.Context, rentalID int32) ([]domain.RentalLineItem, error) {
	query := `SELECT ` + lineColumns + ` FROM rental_lines WHERE rental_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.RentalLineItem
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

func (r *rentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]domain.RentalOrder, error) {
	var conds []string
	var args []any
	if len(filter.States) > 0 {
		states := make([]string, len(filter.States))
		for i, s := range filter.States {
			states[i] = string(s)
		}
		args = append(args, pq.Array(states))
		conds = append(conds, fmt.Sprintf("state = ANY($%d)", len(args)))
	}
	if filter.CustomerID != 0 {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}

	query := `SELECT ` + rentalColumns + ` FROM rentals`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.CustomerID != 0 {
		query += " ORDER BY start_date DESC"
	} else {
		query += " ORDER BY due_date ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.RentalOrder
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) CountByState(ctx context.Context, state domain.RentalState) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals WHERE state = $1`, state).Scan(&count)
	return count, err
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id int32, returnedDate time.Time, penalty decimal.Decimal, returnedBy int32) (bool, error) {
	query := `UPDATE rentals
	          SET state = 'RETURNED', returned_date = $1, penalty = $2, returned_by = $3, updated_on = $1
	          WHERE id = $4 AND state IN ('ACTIVE', 'OVERDUE')`
	logger.DatabaseCall("rentals.MarkReturned", query, "rentalID", id)
	res, err := r.db.ExecContext(ctx, query, returnedDate, penalty, returnedBy, id)
	if err != nil {
		logger.DatabaseResult("rentals.MarkReturned", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("rentals.MarkReturned", n, err)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *rentalRepository) MarkOverdue(ctx context.Context, now time.Time) ([]int32, error) {
	query := `UPDATE rentals
	          SET state = 'OVERDUE', updated_on = $1
	          WHERE state = 'ACTIVE' AND due_date < $1
	          RETURNING id`
	logger.DatabaseCall("rentals.MarkOverdue", query, "now", now)
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		logger.DatabaseResult("rentals.MarkOverdue", 0, err)
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("rentals.MarkOverdue", int64(len(ids)), nil)
	return ids, nil
}
