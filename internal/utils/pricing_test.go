package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineSubtotal(t *testing.T) {
	t.Run("Quantity times rate times days", func(t *testing.T) {
		assert.True(t, dec("900").Equal(LineSubtotal(2, dec("150"), 3)))
	})

	t.Run("Fractional rate", func(t *testing.T) {
		assert.True(t, dec("37.5").Equal(LineSubtotal(1, dec("12.50"), 3)))
	})

	t.Run("Zero rate", func(t *testing.T) {
		assert.True(t, LineSubtotal(4, decimal.Zero, 7).IsZero())
	})
}

func TestDepositFor(t *testing.T) {
	t.Run("Uses sale price", func(t *testing.T) {
		deposit := DepositFor([]DepositLine{
			{Quantity: 2, UnitSalePrice: dec("800")},
			{Quantity: 1, UnitSalePrice: dec("350.25")},
		})
		assert.True(t, dec("1950.25").Equal(deposit))
	})

	t.Run("No lines", func(t *testing.T) {
		assert.True(t, DepositFor(nil).IsZero())
	})
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		at       time.Time
		expected int32
	}{
		{"Before due", due.Add(-48 * time.Hour), 0},
		{"Exactly due", due, 0},
		{"Less than a day late", due.Add(23 * time.Hour), 0},
		{"One day late", due.Add(24 * time.Hour), 1},
		{"Partial day is floored", due.Add(74 * time.Hour), 3},
		{"Three days late", due.AddDate(0, 0, 3), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysLate(due, tt.at))
		})
	}
}

func TestPenaltyFor(t *testing.T) {
	t.Run("Scenario rate 50 three days", func(t *testing.T) {
		assert.True(t, dec("150").Equal(PenaltyFor(3, dec("50"))))
	})

	t.Run("Not late", func(t *testing.T) {
		assert.True(t, PenaltyFor(0, dec("50")).IsZero())
	})

	t.Run("Negative days treated as not late", func(t *testing.T) {
		assert.True(t, PenaltyFor(-2, dec("50")).IsZero())
	})
}

func TestNetSettlement(t *testing.T) {
	assert.True(t, dec("1450").Equal(NetSettlement(dec("1600"), dec("150"))))
	assert.True(t, dec("-50").Equal(NetSettlement(dec("100"), dec("150"))))
}

func TestDueDate(t *testing.T) {
	start := time.Date(2024, 2, 27, 18, 30, 0, 0, time.UTC)
	due := DueDate(start, 3)
	assert.Equal(t, time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC), due)
	assert.True(t, due.After(start))
}

func TestCalculateRentalCost(t *testing.T) {
	t.Run("Single line", func(t *testing.T) {
		b := CalculateRentalCost([]PricedLine{
			{Quantity: 2, RatePerDay: dec("150"), UnitSalePrice: dec("800")},
		}, 3)
		assert.True(t, dec("900").Equal(b.RentalTotal))
		assert.True(t, dec("1600").Equal(b.Deposit))
		assert.Len(t, b.Subtotals, 1)
	})

	t.Run("Multiple lines", func(t *testing.T) {
		b := CalculateRentalCost([]PricedLine{
			{Quantity: 1, RatePerDay: dec("100"), UnitSalePrice: dec("500")},
			{Quantity: 3, RatePerDay: dec("20"), UnitSalePrice: dec("90")},
		}, 2)
		assert.True(t, dec("200").Equal(b.Subtotals[0]))
		assert.True(t, dec("120").Equal(b.Subtotals[1]))
		assert.True(t, dec("320").Equal(b.RentalTotal))
		assert.True(t, dec("770").Equal(b.Deposit))
	})
}
