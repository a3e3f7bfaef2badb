package product

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/core/common/validation"
	"github.com/frahmantamala/procurement-inventory/internal/supplier"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	List(ctx context.Context, f ListFilter) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, dto CreateProductDTO) (*Product, error)
	Update(ctx context.Context, id int64, dto UpdateProductDTO) (*Product, error)
	Delete(ctx context.Context, id int64) (*Product, error)
}

type RepositoryAPI interface {
	List(ctx context.Context, f ListFilter) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetStatus(ctx context.Context, id int64, status Status) error
}

type SupplierReader interface {
	GetByID(ctx context.Context, id int64) (*supplier.Supplier, error)
}

// OrderReferences tells whether any purchase order line points at a product.
type OrderReferences interface {
	IsProductReferenced(ctx context.Context, productID int64) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type Service struct {
	repo      RepositoryAPI
	suppliers SupplierReader
	orders    OrderReferences
	audit     AuditRecorder
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, suppliers SupplierReader, orders OrderReferences, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		orders:    orders,
		audit:     recorder,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Product, error) {
	products, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return nil, internal.NewInternalError("failed to list products", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.load(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list categories", err)
	}
	return categories, nil
}

func (s *Service) Create(ctx context.Context, dto CreateProductDTO) (*Product, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := checkPrice(dto.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, dto.SupplierID); err != nil {
		return nil, err
	}

	sku := normalizeSKU(dto.SKU)
	if err := s.checkSKUFree(ctx, sku, 0); err != nil {
		return nil, err
	}

	p := &Product{
		SKU:              sku,
		Name:             strings.TrimSpace(dto.Name),
		Description:      dto.Description,
		Category:         strings.TrimSpace(dto.Category),
		Quantity:         dto.Quantity,
		UnitPrice:        dto.UnitPrice.Round(2),
		ReorderThreshold: DefaultReorderThreshold,
		SupplierID:       dto.SupplierID,
		Status:           StatusActive,
	}
	if dto.ReorderThreshold != nil {
		p.ReorderThreshold = *dto.ReorderThreshold
	}
	if dto.Status != "" {
		p.Status = Status(dto.Status)
	}
	if actor := internal.ActorIDFromContext(ctx); actor != 0 {
		p.CreatedBy = &actor
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicateSKU) {
			return nil, ErrDuplicateSKU
		}
		s.logger.Error("failed to create product", "sku", sku, "error", err)
		return nil, internal.NewInternalError("failed to create product", err)
	}
	p.refresh()

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityProduct,
		EntityID:   audit.EntityRef(p.ID),
		Changes:    audit.Changes(dto),
	})
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateProductDTO) (*Product, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.SKU != nil {
		sku := normalizeSKU(*dto.SKU)
		if sku != p.SKU {
			if err := s.checkSKUFree(ctx, sku, p.ID); err != nil {
				return nil, err
			}
			p.SKU = sku
		}
	}
	if dto.Name != nil {
		p.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Category != nil {
		p.Category = strings.TrimSpace(*dto.Category)
	}
	if dto.Quantity != nil {
		p.Quantity = *dto.Quantity
	}
	if dto.UnitPrice != nil {
		if err := checkPrice(*dto.UnitPrice); err != nil {
			return nil, err
		}
		p.UnitPrice = dto.UnitPrice.Round(2)
	}
	if dto.ReorderThreshold != nil {
		p.ReorderThreshold = *dto.ReorderThreshold
	}
	if dto.SupplierID != nil && *dto.SupplierID != p.SupplierID {
		if err := s.checkSupplier(ctx, *dto.SupplierID); err != nil {
			return nil, err
		}
		p.SupplierID = *dto.SupplierID
		p.SupplierName = ""
	}
	if dto.Status != nil {
		p.Status = Status(*dto.Status)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateSKU):
			return nil, ErrDuplicateSKU
		case errors.Is(err, ErrProductNotFound):
			return nil, ErrProductNotFound
		}
		s.logger.Error("failed to update product", "product_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update product", err)
	}
	p.refresh()

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityProduct,
		EntityID:   audit.EntityRef(p.ID),
		Changes:    audit.Changes(dto),
	})
	return p, nil
}

// Delete deactivates a product. Products referenced by any order line are
// kept as they are.
func (s *Service) Delete(ctx context.Context, id int64) (*Product, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	referenced, err := s.orders.IsProductReferenced(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to check order references", err)
	}
	if referenced {
		return nil, ErrProductInUse
	}

	if err := s.repo.SetStatus(ctx, id, StatusInactive); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, internal.NewInternalError("failed to deactivate product", err)
	}
	p.Status = StatusInactive

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityProduct,
		EntityID:   audit.EntityRef(p.ID),
		Changes:    audit.Changes(map[string]string{"status": string(StatusInactive)}),
	})
	return p, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, internal.NewInternalError("failed to load product", err)
	}
	return p, nil
}

func (s *Service) checkSupplier(ctx context.Context, id int64) error {
	if _, err := s.suppliers.GetByID(ctx, id); err != nil {
		if errors.Is(err, supplier.ErrSupplierNotFound) {
			return ErrSupplierNotFound
		}
		return internal.NewInternalError("failed to load supplier", err)
	}
	return nil
}

func (s *Service) checkSKUFree(ctx context.Context, sku string, selfID int64) error {
	existing, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil
		}
		return internal.NewInternalError("failed to check sku", err)
	}
	if existing.ID != selfID {
		return ErrDuplicateSKU
	}
	return nil
}

func checkPrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return internal.NewValidationFieldError("unit_price", "unit_price must be greater than or equal to 0", internal.ErrCodeValidationFailed)
	}
	return nil
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
