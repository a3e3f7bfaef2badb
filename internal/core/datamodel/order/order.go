package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrder struct {
	ID          int64           `gorm:"primaryKey"`
	OrderNumber string          `gorm:"column:order_number;uniqueIndex;not null"`
	SupplierID  *int64          `gorm:"column:supplier_id;index"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Status      string          `gorm:"column:status;not null;default:DRAFT;index"`
	RequestedBy int64           `gorm:"column:requested_by;not null"`
	ApprovedBy  *int64          `gorm:"column:approved_by"`
	SubmittedAt *time.Time      `gorm:"column:submitted_at"`
	ApprovedAt  *time.Time      `gorm:"column:approved_at"`
	DeliveredAt *time.Time      `gorm:"column:delivered_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

type OrderItem struct {
	ID         int64           `gorm:"primaryKey"`
	OrderID    int64           `gorm:"column:order_id;not null;index"`
	LineNo     int             `gorm:"column:line_no;not null"`
	ProductID  int64           `gorm:"column:product_id;not null;index"`
	SKU        string          `gorm:"column:sku;not null"`
	Name       string          `gorm:"column:name;not null"`
	Quantity   int64           `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null"`
}

func (OrderItem) TableName() string {
	return "purchase_order_items"
}

// PurchaseOrderWithNames is the header read shape joined with suppliers and users.
type PurchaseOrderWithNames struct {
	PurchaseOrder
	SupplierName    *string `gorm:"column:supplier_name"`
	RequestedByName *string `gorm:"column:requested_by_name"`
	ApprovedByName  *string `gorm:"column:approved_by_name"`
}
