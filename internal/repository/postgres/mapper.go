package postgres

import (
	"database/sql"
	"errors"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/repository"
)

// Row mapping between the relational layout and the domain entities. Nothing
// outside this package sees column order or nullable column types.

type scanner interface {
	Scan(dest ...any) error
}

const inventoryColumns = `code, COALESCE(description, ''), total_stock, available, unit_sale_price, unit_rental_rate, status`

func scanInventoryItem(row scanner) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	err := row.Scan(&item.Code, &item.Description, &item.TotalStock, &item.Available, &item.UnitSalePrice, &item.UnitRentalRatePerDay, &item.Status)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

const rentalColumns = `id, customer_id, clerk_id, start_date, due_date, returned_date, requested_days, rental_total, deposit, penalty, state, returned_by`

func scanRental(row scanner) (*domain.RentalOrder, error) {
	rt := &domain.RentalOrder{}
	var returnedDate sql.NullTime
	var returnedBy sql.NullInt32
	err := row.Scan(&rt.ID, &rt.CustomerID, &rt.ClerkID, &rt.StartDate, &rt.DueDate, &returnedDate, &rt.RequestedDays, &rt.RentalTotal, &rt.Deposit, &rt.Penalty, &rt.State, &returnedBy)
	if err != nil {
		return nil, notFound(err)
	}
	if returnedDate.Valid {
		t := returnedDate.Time
		rt.ReturnedDate = &t
	}
	if returnedBy.Valid {
		id := returnedBy.Int32
		rt.ReturnedBy = &id
	}
	return rt, nil
}

const lineColumns = `rental_id, item_code, quantity, unit_rental_rate, subtotal`

func scanLine(row scanner) (*domain.RentalLineItem, error) {
	l := &domain.RentalLineItem{}
	if err := row.Scan(&l.RentalID, &l.ItemCode, &l.Quantity, &l.UnitRentalRatePerDay, &l.Subtotal); err != nil {
		return nil, err
	}
	return l, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
