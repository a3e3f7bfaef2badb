package postgres

import (
	"context"
	"errors"

	supplierDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/supplier"
	"github.com/frahmantamala/procurement-inventory/internal/supplier"
	"gorm.io/gorm"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) supplier.RepositoryAPI {
	return &SupplierRepository{db: db}
}

// List filters by status when one is given.
func (r *SupplierRepository) List(ctx context.Context, status supplier.Status) ([]*supplier.Supplier, error) {
	q := r.db.WithContext(ctx).Order("company_name ASC").Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}

	var rows []supplierDatamodel.Supplier
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*supplier.Supplier, 0, len(rows))
	for i := range rows {
		out = append(out, supplier.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*supplier.Supplier, error) {
	var m supplierDatamodel.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, supplier.ErrSupplierNotFound
		}
		return nil, err
	}
	return supplier.FromDataModel(&m), nil
}

func (r *SupplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	m := supplier.ToDataModel(s)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	s.ID = m.ID
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SupplierRepository) Update(ctx context.Context, s *supplier.Supplier) error {
	m := supplier.ToDataModel(s)
	res := r.db.WithContext(ctx).
		Model(&supplierDatamodel.Supplier{}).
		Where("id = ?", s.ID).
		Select("company_name", "contact_person", "email", "phone",
			"address_line1", "address_line2", "city", "state", "country", "postal_code",
			"payment_terms", "status", "updated_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return supplier.ErrSupplierNotFound
	}
	return nil
}
