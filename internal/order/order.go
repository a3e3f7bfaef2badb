package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	orderDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusDelivered Status = "DELIVERED"
)

func Statuses() []Status {
	return []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusDelivered}
}

type Item struct {
	ID         int64           `json:"id"`
	LineNo     int             `json:"line_no"`
	ProductID  int64           `json:"product_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	SupplierID      *int64          `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name,omitempty"`
	Items           []Item          `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	RequestedBy     int64           `json:"requested_by"`
	RequestedByName string          `json:"requested_by_name,omitempty"`
	ApprovedBy      *int64          `json:"approved_by,omitempty"`
	ApprovedByName  string          `json:"approved_by_name,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StockChange is the effect of one delivered line on product stock.
type StockChange struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Before    int64  `json:"before"`
	After     int64  `json:"after"`
	Added     int64  `json:"added"`
}

var (
	ErrOrderNotFound = internal.NewNotFoundError("order not found", internal.ErrCodeOrderNotFound)

	ErrAlreadySubmitted = invalidStatus("order already submitted")
	ErrNotSubmitted     = invalidStatus("order not submitted")
	ErrNotApproved      = invalidStatus("order not approved")
	ErrUpdateNotDraft   = invalidStatus("can only update draft orders")
	ErrDeleteNotDraft   = invalidStatus("can only delete draft orders")

	ErrSupplierNotFound = internal.NewValidationError("supplier not found", internal.ErrCodeSupplierNotFound)
)

func invalidStatus(msg string) *internal.AppError {
	return internal.NewValidationError(msg, internal.ErrCodeInvalidOrderStatus)
}

func productNotFound(id int64) *internal.AppError {
	return internal.NewValidationError(fmt.Sprintf("product %d not found", id), internal.ErrCodeProductNotFound)
}

func inactiveSupplier(name string) *internal.AppError {
	return internal.NewValidationError("cannot create order with inactive supplier: "+name, internal.ErrCodeSupplierInactive)
}

// MissingProductError is returned by a delivery that references a product
// which no longer exists. The delivery is rolled back.
type MissingProductError struct {
	ProductID int64
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// Transition names one step of the order lifecycle.
type Transition string

const (
	TransitionSubmit  Transition = "submit"
	TransitionApprove Transition = "approve"
	TransitionDeliver Transition = "deliver"
)

type rule struct {
	From      Status
	To        Status
	Rejection *internal.AppError
	Action    audit.Action
}

// workflow is the only place the lifecycle is defined. Every transition is
// applied as a conditional update on From, so a lost race is reported with
// the same rejection as a stale read.
var workflow = map[Transition]rule{
	TransitionSubmit:  {From: StatusDraft, To: StatusSubmitted, Rejection: ErrAlreadySubmitted, Action: audit.ActionSubmit},
	TransitionApprove: {From: StatusSubmitted, To: StatusApproved, Rejection: ErrNotSubmitted, Action: audit.ActionApprove},
	TransitionDeliver: {From: StatusApproved, To: StatusDelivered, Rejection: ErrNotApproved, Action: audit.ActionDeliver},
}

// NewOrderNumber formats PO-<unix millis>-<6 hex>.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("PO-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

// Total sums line totals.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

func FromDataModel(m *orderDatamodel.PurchaseOrder) *Order {
	o := &Order{
		ID:          m.ID,
		OrderNumber: m.OrderNumber,
		SupplierID:  m.SupplierID,
		TotalAmount: m.TotalAmount,
		Status:      Status(m.Status),
		RequestedBy: m.RequestedBy,
		ApprovedBy:  m.ApprovedBy,
		SubmittedAt: m.SubmittedAt,
		ApprovedAt:  m.ApprovedAt,
		DeliveredAt: m.DeliveredAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Items:       make([]Item, 0, len(m.Items)),
	}
	for i := range m.Items {
		o.Items = append(o.Items, itemFromDataModel(&m.Items[i]))
	}
	return o
}

func FromReadModel(m *orderDatamodel.PurchaseOrderWithNames, items []orderDatamodel.OrderItem) *Order {
	o := FromDataModel(&m.PurchaseOrder)
	for i := range items {
		o.Items = append(o.Items, itemFromDataModel(&items[i]))
	}
	if m.SupplierName != nil {
		o.SupplierName = *m.SupplierName
	}
	if m.RequestedByName != nil {
		o.RequestedByName = *m.RequestedByName
	}
	if m.ApprovedByName != nil {
		o.ApprovedByName = *m.ApprovedByName
	}
	return o
}

func ToDataModel(o *Order) *orderDatamodel.PurchaseOrder {
	m := &orderDatamodel.PurchaseOrder{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		SupplierID:  o.SupplierID,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		RequestedBy: o.RequestedBy,
		ApprovedBy:  o.ApprovedBy,
		SubmittedAt: o.SubmittedAt,
		ApprovedAt:  o.ApprovedAt,
		DeliveredAt: o.DeliveredAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	m.Items = ItemsToDataModel(o.ID, o.Items)
	return m
}

func ItemsToDataModel(orderID int64, items []Item) []orderDatamodel.OrderItem {
	out := make([]orderDatamodel.OrderItem, len(items))
	for i, it := range items {
		out[i] = orderDatamodel.OrderItem{
			OrderID:    orderID,
			LineNo:     it.LineNo,
			ProductID:  it.ProductID,
			SKU:        it.SKU,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}
	return out
}

func itemFromDataModel(m *orderDatamodel.OrderItem) Item {
	return Item{
		ID:         m.ID,
		LineNo:     m.LineNo,
		ProductID:  m.ProductID,
		SKU:        m.SKU,
		Name:       m.Name,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		TotalPrice: m.TotalPrice,
	}
}
