package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalState string

const (
	RentalStateActive   RentalState = "ACTIVE"
	RentalStateOverdue  RentalState = "OVERDUE"
	RentalStateReturned RentalState = "RETURNED"
)

// Open reports whether the rental still holds reserved stock.
func (s RentalState) Open() bool {
	return s == RentalStateActive || s == RentalStateOverdue
}

type RentalOrder struct {
	ID            int32           `json:"id"`
	CustomerID    int32           `json:"customer_id"`
	ClerkID       int32           `json:"clerk_id"`
	StartDate     time.Time       `json:"start_date"`
	DueDate       time.Time       `json:"due_date"`
	ReturnedDate  *time.Time      `json:"returned_date,omitempty"`
	RequestedDays int32           `json:"requested_days"`
	RentalTotal   decimal.Decimal `json:"rental_total"`
	Deposit       decimal.Decimal `json:"deposit"`
	Penalty       decimal.Decimal `json:"penalty"`
	State         RentalState     `json:"state"`
	ReturnedBy    *int32          `json:"returned_by,omitempty"`

	Lines []RentalLineItem `json:"lines,omitempty"` // Populated when loaded with lines
}

// RentalLineItem captures the rate at registration time. Later catalog price
// changes never alter Subtotal.
type RentalLineItem struct {
	RentalID             int32           `json:"rental_id"`
	ItemCode             string          `json:"item_code"`
	Quantity             int32           `json:"quantity"`
	UnitRentalRatePerDay decimal.Decimal `json:"unit_rental_rate_per_day"`
	Subtotal             decimal.Decimal `json:"subtotal"`
}

// LineRequest is one requested product line of a new rental.
type LineRequest struct {
	ItemCode string `json:"item_code"`
	Quantity int32  `json:"quantity"`
}

// Settlement is the computed outcome of a return. Nothing is charged or
// refunded by the system; callers decide how to settle.
type Settlement struct {
	RentalID         int32           `json:"rental_id"`
	ReturnedDate     time.Time       `json:"returned_date"`
	DaysLate         int32           `json:"days_late"`
	Penalty          decimal.Decimal `json:"penalty"`
	DepositReturned  decimal.Decimal `json:"deposit_returned"`
	RentalTotal      decimal.Decimal `json:"rental_total"`
	AdditionalCharge decimal.Decimal `json:"additional_charge"`
	Net              decimal.Decimal `json:"net"`
}

// PenaltyEstimate is a live, uncommitted penalty figure for an open rental.
type PenaltyEstimate struct {
	RentalID      int32           `json:"rental_id"`
	State         RentalState     `json:"state"`
	DaysLate      int32           `json:"days_late"`
	PenaltyPerDay decimal.Decimal `json:"penalty_per_day"`
	Penalty       decimal.Decimal `json:"penalty"`
	AsOf          time.Time       `json:"as_of"`
}
