package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               int64           `gorm:"primaryKey"`
	SKU              string          `gorm:"column:sku;uniqueIndex;not null"`
	Name             string          `gorm:"column:name;not null"`
	Description      string          `gorm:"column:description"`
	Category         string          `gorm:"column:category;index"`
	Quantity         int64           `gorm:"column:quantity;not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	ReorderThreshold int64           `gorm:"column:reorder_threshold;not null"`
	SupplierID       int64           `gorm:"column:supplier_id;not null;index"`
	CreatedBy        *int64          `gorm:"column:created_by"`
	Status           string          `gorm:"column:status;not null;default:ACTIVE"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// ProductWithSupplier is the read shape joined with suppliers.
type ProductWithSupplier struct {
	Product
	SupplierName *string `gorm:"column:supplier_name"`
}
