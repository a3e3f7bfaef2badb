package order

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/procurement-inventory/internal"
)

type LineDTO struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gte=1"`
}

// OrderDTO is the body of both create and update. Prices are never taken
// from the caller.
type OrderDTO struct {
	SupplierID *int64    `json:"supplier_id" validate:"omitempty,gt=0"`
	Items      []LineDTO `json:"items" validate:"required,min=1,dive"`
}

type DeliverResponse struct {
	*Order
	StockChanges []StockChange `json:"stock_changes"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ListFilter struct {
	Status Status
}

func ParseListFilter(q url.Values) (ListFilter, error) {
	var f ListFilter
	v := strings.ToUpper(strings.TrimSpace(q.Get("status")))
	if v == "" {
		return f, nil
	}
	for _, s := range Statuses() {
		if Status(v) == s {
			f.Status = s
			return f, nil
		}
	}
	return f, internal.NewValidationFieldError("status", "status must be one of [DRAFT SUBMITTED APPROVED DELIVERED]", internal.ErrCodeInvalidRequest)
}
