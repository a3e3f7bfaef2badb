package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/core/common/validation"
	"github.com/frahmantamala/procurement-inventory/internal/product"
	"github.com/frahmantamala/procurement-inventory/internal/supplier"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	List(ctx context.Context, f ListFilter) ([]*Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, dto OrderDTO) (*Order, error)
	Update(ctx context.Context, id int64, dto OrderDTO) (*Order, error)
	Submit(ctx context.Context, id int64) (*Order, error)
	Approve(ctx context.Context, id int64) (*Order, error)
	Deliver(ctx context.Context, id int64) (*DeliverResponse, error)
	Delete(ctx context.Context, id int64) error
	Document(ctx context.Context, id int64) ([]byte, *Order, error)
}

type RepositoryAPI interface {
	List(ctx context.Context, f ListFilter) ([]*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, o *Order) error
	// ReplaceDraft swaps supplier, lines and total while the order is still a
	// draft. It reports false when the order left DRAFT.
	ReplaceDraft(ctx context.Context, o *Order) (bool, error)
	// Transition moves id from one status to another and reports false when
	// the order was not in from.
	Transition(ctx context.Context, id int64, from, to Status, at time.Time, actorID int64) (bool, error)
	// Deliver marks an approved order delivered and adds every line to stock
	// in one transaction.
	Deliver(ctx context.Context, id int64, at time.Time, actorID int64) ([]StockChange, error)
	DeleteDraft(ctx context.Context, id int64) (bool, error)
	IsProductReferenced(ctx context.Context, productID int64) (bool, error)
}

type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

type SupplierReader interface {
	GetByID(ctx context.Context, id int64) (*supplier.Supplier, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type Service struct {
	repo      RepositoryAPI
	products  ProductReader
	suppliers SupplierReader
	audit     AuditRecorder
	document  *DocumentRenderer
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, products ProductReader, suppliers SupplierReader, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		suppliers: suppliers,
		audit:     recorder,
		document:  NewDocumentRenderer(),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	orders, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		return nil, internal.NewInternalError("failed to list orders", err)
	}
	return orders, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.load(ctx, id)
}

// Create prices every line from the catalog and stores a DRAFT order. Nothing
// is written when any product is missing or any supplier involved is inactive.
func (s *Service) Create(ctx context.Context, dto OrderDTO) (*Order, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	principal, ok := internal.PrincipalFromContext(ctx)
	if !ok {
		return nil, internal.ErrMissingPrincipal
	}

	priced, err := s.price(ctx, dto)
	if err != nil {
		return nil, err
	}

	o := &Order{
		OrderNumber:  NewOrderNumber(s.now()),
		SupplierID:   &priced.supplier.ID,
		SupplierName: priced.supplier.CompanyName,
		Items:        priced.items,
		TotalAmount:  Total(priced.items),
		Status:       StatusDraft,
		RequestedBy:  principal.ID,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.logger.Error("failed to create order", "error", err)
		return nil, internal.NewInternalError("failed to create order", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityPurchaseOrder,
		EntityID:   audit.EntityRef(o.ID),
		Changes:    audit.Changes(dto),
		Details:    fmt.Sprintf("Created order %s", o.OrderNumber),
	})

	return s.reload(ctx, o), nil
}

// Update replaces the supplier and lines of a DRAFT order and re-prices it.
func (s *Service) Update(ctx context.Context, id int64, dto OrderDTO) (*Order, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusDraft {
		return nil, ErrUpdateNotDraft
	}

	priced, err := s.price(ctx, dto)
	if err != nil {
		return nil, err
	}

	o.SupplierID = &priced.supplier.ID
	o.SupplierName = priced.supplier.CompanyName
	o.Items = priced.items
	o.TotalAmount = Total(priced.items)

	applied, err := s.repo.ReplaceDraft(ctx, o)
	if err != nil {
		s.logger.Error("failed to update order", "order_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update order", err)
	}
	if !applied {
		return nil, ErrUpdateNotDraft
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityPurchaseOrder,
		EntityID:   audit.EntityRef(o.ID),
		Changes:    audit.Changes(dto),
	})

	return s.reload(ctx, o), nil
}

func (s *Service) Submit(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, TransitionSubmit)
}

func (s *Service) Approve(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, TransitionApprove)
}

func (s *Service) transition(ctx context.Context, id int64, t Transition) (*Order, error) {
	r := workflow[t]

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != r.From {
		return nil, r.Rejection
	}

	applied, err := s.repo.Transition(ctx, id, r.From, r.To, s.now().UTC(), internal.ActorIDFromContext(ctx))
	if err != nil {
		s.logger.Error("order transition failed", "order_id", id, "transition", t, "error", err)
		return nil, internal.NewInternalError("failed to update order", err)
	}
	if !applied {
		return nil, r.Rejection
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     r.Action,
		EntityType: audit.EntityPurchaseOrder,
		EntityID:   audit.EntityRef(id),
		Details:    fmt.Sprintf("Order %s %s", o.OrderNumber, r.To),
	})

	return s.reload(ctx, o), nil
}

// Deliver receives an APPROVED order into stock. The status change and all
// stock increments commit together; audit entries follow the commit.
func (s *Service) Deliver(ctx context.Context, id int64) (*DeliverResponse, error) {
	r := workflow[TransitionDeliver]

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != r.From {
		return nil, r.Rejection
	}

	changes, err := s.repo.Deliver(ctx, id, s.now().UTC(), internal.ActorIDFromContext(ctx))
	if err != nil {
		var missing *MissingProductError
		switch {
		case errors.Is(err, ErrNotApproved):
			return nil, r.Rejection
		case errors.As(err, &missing):
			s.logger.Warn("delivery aborted, product missing", "order_id", id, "product_id", missing.ProductID)
			return nil, internal.NewNotFoundError(missing.Error(), internal.ErrCodeProductNotFound)
		}
		s.logger.Error("order delivery failed", "order_id", id, "error", err)
		return nil, internal.NewInternalError("failed to deliver order", err)
	}

	for _, c := range changes {
		s.audit.Record(ctx, audit.Entry{
			Action:     audit.ActionInventoryUpdate,
			EntityType: audit.EntityProduct,
			EntityID:   audit.EntityRef(c.ProductID),
			Details: fmt.Sprintf("Quantity increased from %d to %d (Order delivery: %s)",
				c.Before, c.After, o.OrderNumber),
		})
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     r.Action,
		EntityType: audit.EntityPurchaseOrder,
		EntityID:   audit.EntityRef(id),
		Details:    fmt.Sprintf("Order %s delivered", o.OrderNumber),
	})

	return &DeliverResponse{Order: s.reload(ctx, o), StockChanges: changes}, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if o.Status != StatusDraft {
		return ErrDeleteNotDraft
	}

	deleted, err := s.repo.DeleteDraft(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete order", "order_id", id, "error", err)
		return internal.NewInternalError("failed to delete order", err)
	}
	if !deleted {
		return ErrDeleteNotDraft
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityPurchaseOrder,
		EntityID:   audit.EntityRef(id),
		Details:    fmt.Sprintf("Deleted order %s", o.OrderNumber),
	})
	return nil
}

// Document renders the order as a PDF.
func (s *Service) Document(ctx context.Context, id int64) ([]byte, *Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.document.Render(o)
	if err != nil {
		s.logger.Error("failed to render order document", "order_id", id, "error", err)
		return nil, nil, internal.NewInternalError("failed to render order document", err)
	}
	return pdf, o, nil
}

type pricedOrder struct {
	supplier *supplier.Supplier
	items    []Item
}

// price re-reads sku, name and unit price for every line. The supplier
// defaults to the first line's product supplier; every supplier touched must
// be ACTIVE.
func (s *Service) price(ctx context.Context, dto OrderDTO) (*pricedOrder, error) {
	items := make([]Item, 0, len(dto.Items))
	seen := map[int64]*supplier.Supplier{}
	var supplierID int64
	if dto.SupplierID != nil {
		supplierID = *dto.SupplierID
	}

	for i, line := range dto.Items {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				return nil, productNotFound(line.ProductID)
			}
			return nil, internal.NewInternalError("failed to load product", err)
		}

		sup, err := s.supplier(ctx, seen, p.SupplierID)
		if err != nil && !errors.Is(err, ErrSupplierNotFound) {
			return nil, err
		}
		if sup != nil && !sup.IsActive() {
			return nil, inactiveSupplier(sup.CompanyName)
		}
		if supplierID == 0 {
			supplierID = p.SupplierID
		}

		unit := p.UnitPrice
		items = append(items, Item{
			LineNo:     i + 1,
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			Quantity:   line.Quantity,
			UnitPrice:  unit,
			TotalPrice: unit.Mul(decimal.NewFromInt(line.Quantity)),
		})
	}

	sup, err := s.supplier(ctx, seen, supplierID)
	if err != nil {
		return nil, err
	}
	if !sup.IsActive() {
		return nil, inactiveSupplier(sup.CompanyName)
	}

	return &pricedOrder{supplier: sup, items: items}, nil
}

func (s *Service) supplier(ctx context.Context, seen map[int64]*supplier.Supplier, id int64) (*supplier.Supplier, error) {
	if sup, ok := seen[id]; ok {
		return sup, nil
	}
	sup, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, supplier.ErrSupplierNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, internal.NewInternalError("failed to load supplier", err)
	}
	seen[id] = sup
	return sup, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, internal.NewInternalError("failed to load order", err)
	}
	return o, nil
}

// reload returns the stored order, falling back to the in-memory copy when
// the read fails after a committed write.
func (s *Service) reload(ctx context.Context, fallback *Order) *Order {
	o, err := s.repo.GetByID(ctx, fallback.ID)
	if err != nil {
		s.logger.Warn("failed to reload order", "order_id", fallback.ID, "error", err)
		return fallback
	}
	return o
}
