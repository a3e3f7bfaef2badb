package product

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/shopspring/decimal"
)

type CreateProductDTO struct {
	SKU              string          `json:"sku" validate:"required,max=64"`
	Name             string          `json:"name" validate:"required,max=200"`
	Description      string          `json:"description" validate:"max=2000"`
	Category         string          `json:"category" validate:"max=100"`
	Quantity         int64           `json:"quantity" validate:"gte=0"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReorderThreshold *int64          `json:"reorder_threshold" validate:"omitempty,gte=0"`
	SupplierID       int64           `json:"supplier_id" validate:"required,gt=0"`
	Status           string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type UpdateProductDTO struct {
	SKU              *string          `json:"sku" validate:"omitempty,min=1,max=64"`
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description      *string          `json:"description" validate:"omitempty,max=2000"`
	Category         *string          `json:"category" validate:"omitempty,max=100"`
	Quantity         *int64           `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice        *decimal.Decimal `json:"unit_price"`
	ReorderThreshold *int64           `json:"reorder_threshold" validate:"omitempty,gte=0"`
	SupplierID       *int64           `json:"supplier_id" validate:"omitempty,gt=0"`
	Status           *string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type DeleteResponse struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
}

// ListFilter narrows product listings; zero values mean "any".
type ListFilter struct {
	Status     Status
	LowStock   bool
	SupplierID int64
	Category   string
}

func ParseListFilter(q url.Values) (ListFilter, error) {
	var f ListFilter

	if v := strings.ToUpper(strings.TrimSpace(q.Get("status"))); v != "" {
		if v != string(StatusActive) && v != string(StatusInactive) {
			return f, internal.NewValidationFieldError("status", "status must be one of [ACTIVE INACTIVE]", internal.ErrCodeInvalidRequest)
		}
		f.Status = Status(v)
	}
	if v := q.Get("low_stock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, internal.NewValidationFieldError("low_stock", "low_stock must be a boolean", internal.ErrCodeInvalidRequest)
		}
		f.LowStock = b
	}
	if v := q.Get("supplier_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, internal.NewValidationFieldError("supplier_id", "supplier_id must be a positive integer", internal.ErrCodeInvalidRequest)
		}
		f.SupplierID = id
	}
	f.Category = strings.TrimSpace(q.Get("category"))
	return f, nil
}
