package domain

import "github.com/shopspring/decimal"

type InventoryStatus string

const (
	InventoryStatusActive   InventoryStatus = "ACTIVE"
	InventoryStatusInactive InventoryStatus = "INACTIVE"
)

// InventoryItem is one rentable product line. Available is only ever changed
// through the ledger's reserve/release operations.
type InventoryItem struct {
	Code                 string          `json:"code"`
	Description          string          `json:"description"`
	TotalStock           int32           `json:"total_stock"`
	Available            int32           `json:"available"`
	UnitSalePrice        decimal.Decimal `json:"unit_sale_price"`
	UnitRentalRatePerDay decimal.Decimal `json:"unit_rental_rate_per_day"`
	Status               InventoryStatus `json:"status"`
}

func (i *InventoryItem) IsActive() bool {
	return i.Status == InventoryStatusActive
}
