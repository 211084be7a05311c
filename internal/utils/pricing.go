package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// DepositLine is the input to DepositFor: one requested line priced at the
// item's sale price.
type DepositLine struct {
	Quantity      int32
	UnitSalePrice decimal.Decimal
}

// RentalCostBreakdown summarizes the charges of a rental at registration.
type RentalCostBreakdown struct {
	Subtotals   []decimal.Decimal
	RentalTotal decimal.Decimal
	Deposit     decimal.Decimal
}

// LineSubtotal returns qty × ratePerDay × days.
func LineSubtotal(qty int32, ratePerDay decimal.Decimal, days int32) decimal.Decimal {
	return ratePerDay.Mul(decimal.NewFromInt32(qty)).Mul(decimal.NewFromInt32(days))
}

// DepositFor sums quantity × sale price over all lines. The deposit
// approximates replacement value, so it ignores the rental rate.
func DepositFor(lines []DepositLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitSalePrice.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return total
}

// DueDate returns start + days calendar days.
func DueDate(start time.Time, days int32) time.Time {
	return start.AddDate(0, 0, int(days))
}

// DaysLate returns the number of whole days at is past due, never negative.
func DaysLate(due, at time.Time) int32 {
	if !at.After(due) {
		return 0
	}
	return int32(at.Sub(due) / day)
}

// PenaltyFor returns daysLate × perDay, zero when nothing is late.
func PenaltyFor(daysLate int32, perDay decimal.Decimal) decimal.Decimal {
	if daysLate <= 0 {
		return decimal.Zero
	}
	return perDay.Mul(decimal.NewFromInt32(daysLate))
}

// NetSettlement returns deposit - penalty. Positive means a refund to the
// customer, negative means the customer owes the difference.
func NetSettlement(deposit, penalty decimal.Decimal) decimal.Decimal {
	return deposit.Sub(penalty)
}

// PricedLine is a requested line with the catalog prices captured for it.
type PricedLine struct {
	Quantity      int32
	RatePerDay    decimal.Decimal
	UnitSalePrice decimal.Decimal
}

// CalculateRentalCost prices lines for the given number of days.
func CalculateRentalCost(lines []PricedLine, days int32) RentalCostBreakdown {
	breakdown := RentalCostBreakdown{
		Subtotals:   make([]decimal.Decimal, len(lines)),
		RentalTotal: decimal.Zero,
	}
	deposits := make([]DepositLine, len(lines))
	for i, l := range lines {
		sub := LineSubtotal(l.Quantity, l.RatePerDay, days)
		breakdown.Subtotals[i] = sub
		breakdown.RentalTotal = breakdown.RentalTotal.Add(sub)
		deposits[i] = DepositLine{Quantity: l.Quantity, UnitSalePrice: l.UnitSalePrice}
	}
	breakdown.Deposit = DepositFor(deposits)
	return breakdown
}
