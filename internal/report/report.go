package report

import (
	"github.com/shopspring/decimal"
)

// OrderSummary is the count and value of purchase orders in one status.
type OrderSummary struct {
	Status      string          `json:"status" db:"status"`
	Count       int64           `json:"count" db:"count"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
}

// LowStockItem is an active product at or below its reorder threshold.
type LowStockItem struct {
	ID               int64  `json:"id" db:"id"`
	SKU              string `json:"sku" db:"sku"`
	Name             string `json:"name" db:"name"`
	Category         string `json:"category,omitempty" db:"category"`
	Quantity         int64  `json:"quantity" db:"quantity"`
	ReorderThreshold int64  `json:"reorder_threshold" db:"reorder_threshold"`
	Shortfall        int64  `json:"shortfall" db:"-"`
	SupplierID       int64  `json:"supplier_id" db:"supplier_id"`
	SupplierName     string `json:"supplier_name" db:"supplier_name"`
}
