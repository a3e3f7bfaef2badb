package postgres

import (
	"context"
	"errors"
	"strings"

	productDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/product"
	"github.com/frahmantamala/procurement-inventory/internal/product"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) product.RepositoryAPI {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) withSupplier(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products AS p").
		Select("p.*, s.company_name AS supplier_name").
		Joins("LEFT JOIN suppliers s ON s.id = p.supplier_id")
}

func (r *ProductRepository) List(ctx context.Context, f product.ListFilter) ([]*product.Product, error) {
	q := r.withSupplier(ctx)
	if f.Status != "" {
		q = q.Where("p.status = ?", string(f.Status))
	}
	if f.LowStock {
		q = q.Where("p.quantity <= p.reorder_threshold")
	}
	if f.SupplierID != 0 {
		q = q.Where("p.supplier_id = ?", f.SupplierID)
	}
	if f.Category != "" {
		q = q.Where("p.category = ?", f.Category)
	}

	var rows []*productDatamodel.ProductWithSupplier
	if err := q.Order("p.name ASC").Order("p.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*product.Product, len(rows))
	for i, row := range rows {
		out[i] = product.FromReadModel(row)
	}
	return out, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.first(ctx, "p.id = ?", id)
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.first(ctx, "p.sku = ?", sku)
}

func (r *ProductRepository) first(ctx context.Context, query string, arg interface{}) (*product.Product, error) {
	var rows []*productDatamodel.ProductWithSupplier
	if err := r.withSupplier(ctx).Where(query, arg).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, product.ErrProductNotFound
	}
	return product.FromReadModel(rows[0]), nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&productDatamodel.Product{}).
		Where("category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	m := product.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return product.ErrDuplicateSKU
		}
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	m := product.ToDataModel(p)
	res := r.db.WithContext(ctx).
		Model(&productDatamodel.Product{}).
		Where("id = ?", p.ID).
		Select("sku", "name", "description", "category", "quantity", "unit_price",
			"reorder_threshold", "supplier_id", "status", "updated_at").
		Updates(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return product.ErrDuplicateSKU
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) SetStatus(ctx context.Context, id int64, status product.Status) error {
	res := r.db.WithContext(ctx).
		Model(&productDatamodel.Product{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
