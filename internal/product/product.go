package product

import (
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	productDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/product"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

const DefaultReorderThreshold int64 = 10

type Product struct {
	ID               int64           `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Category         string          `json:"category,omitempty"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReorderThreshold int64           `json:"reorder_threshold"`
	LowStock         bool            `json:"low_stock"`
	SupplierID       int64           `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name,omitempty"`
	CreatedBy        *int64          `json:"created_by,omitempty"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

var (
	ErrProductNotFound = internal.NewNotFoundError("product not found", internal.ErrCodeProductNotFound)
	ErrDuplicateSKU    = internal.NewConflictError("a product with this sku already exists", internal.ErrCodeDuplicateSKU)
	ErrProductInUse    = internal.NewValidationError(
		"cannot delete product that exists in purchase orders, set status to INACTIVE instead",
		internal.ErrCodeProductInUse)
	ErrSupplierNotFound = internal.NewValidationError("supplier not found", internal.ErrCodeSupplierNotFound)
)

// IsLowStock reports whether stock has fallen to the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.ReorderThreshold
}

func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

func (p *Product) refresh() {
	p.LowStock = p.IsLowStock()
}

func FromDataModel(m *productDatamodel.Product) *Product {
	p := &Product{
		ID:               m.ID,
		SKU:              m.SKU,
		Name:             m.Name,
		Description:      m.Description,
		Category:         m.Category,
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		ReorderThreshold: m.ReorderThreshold,
		SupplierID:       m.SupplierID,
		CreatedBy:        m.CreatedBy,
		Status:           Status(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	p.refresh()
	return p
}

func FromReadModel(m *productDatamodel.ProductWithSupplier) *Product {
	p := FromDataModel(&m.Product)
	if m.SupplierName != nil {
		p.SupplierName = *m.SupplierName
	}
	return p
}

func ToDataModel(p *Product) *productDatamodel.Product {
	return &productDatamodel.Product{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Quantity:         p.Quantity,
		UnitPrice:        p.UnitPrice,
		ReorderThreshold: p.ReorderThreshold,
		SupplierID:       p.SupplierID,
		CreatedBy:        p.CreatedBy,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
