package postgres

import (
	"context"
	"time"

	orderDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/order"
	productDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/product"
	"github.com/frahmantamala/procurement-inventory/internal/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) order.RepositoryAPI {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) header(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("purchase_orders AS o").
		Select("o.*, s.company_name AS supplier_name, ru.name AS requested_by_name, au.name AS approved_by_name").
		Joins("LEFT JOIN suppliers s ON s.id = o.supplier_id").
		Joins("LEFT JOIN users ru ON ru.id = o.requested_by").
		Joins("LEFT JOIN users au ON au.id = o.approved_by")
}

func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]*order.Order, error) {
	q := r.header(ctx)
	if f.Status != "" {
		q = q.Where("o.status = ?", string(f.Status))
	}

	var rows []*orderDatamodel.PurchaseOrderWithNames
	if err := q.Order("o.created_at DESC").Order("o.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var items []orderDatamodel.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", ids).
		Order("order_id ASC").Order("line_no ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]orderDatamodel.OrderItem, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]*order.Order, len(rows))
	for i, row := range rows {
		out[i] = order.FromReadModel(row, byOrder[row.ID])
	}
	return out, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var rows []*orderDatamodel.PurchaseOrderWithNames
	if err := r.header(ctx).Where("o.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, order.ErrOrderNotFound
	}

	var items []orderDatamodel.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("line_no ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return order.FromReadModel(rows[0], items), nil
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	m := order.ToDataModel(o)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	for i := range o.Items {
		o.Items[i].ID = m.Items[i].ID
	}
	return nil
}

func (r *OrderRepository) ReplaceDraft(ctx context.Context, o *order.Order) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderDatamodel.PurchaseOrder{}).
			Where("id = ? AND status = ?", o.ID, string(order.StatusDraft)).
			Updates(map[string]interface{}{
				"supplier_id":  o.SupplierID,
				"total_amount": o.TotalAmount,
				"updated_at":   time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("order_id = ?", o.ID).Delete(&orderDatamodel.OrderItem{}).Error; err != nil {
			return err
		}
		items := order.ItemsToDataModel(o.ID, o.Items)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *OrderRepository) Transition(ctx context.Context, id int64, from, to order.Status, at time.Time, actorID int64) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": at,
	}
	switch to {
	case order.StatusSubmitted:
		updates["submitted_at"] = at
	case order.StatusApproved:
		updates["approved_at"] = at
		if actorID != 0 {
			updates["approved_by"] = actorID
		}
	case order.StatusDelivered:
		updates["delivered_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&orderDatamodel.PurchaseOrder{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Deliver flips the order to DELIVERED and adds each line quantity to its
// product. A line whose product no longer exists rolls everything back.
func (r *OrderRepository) Deliver(ctx context.Context, id int64, at time.Time, _ int64) ([]order.StockChange, error) {
	var changes []order.StockChange
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderDatamodel.PurchaseOrder{}).
			Where("id = ? AND status = ?", id, string(order.StatusApproved)).
			Updates(map[string]interface{}{
				"status":       string(order.StatusDelivered),
				"delivered_at": at,
				"updated_at":   at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return order.ErrNotApproved
		}

		var items []orderDatamodel.OrderItem
		if err := tx.Where("order_id = ?", id).Order("line_no ASC").Find(&items).Error; err != nil {
			return err
		}

		changes = make([]order.StockChange, 0, len(items))
		for _, it := range items {
			res := tx.Model(&productDatamodel.Product{}).
				Where("id = ?", it.ProductID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", it.Quantity),
					"updated_at": at,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &order.MissingProductError{ProductID: it.ProductID}
			}

			var after []int64
			if err := tx.Model(&productDatamodel.Product{}).
				Where("id = ?", it.ProductID).
				Pluck("quantity", &after).Error; err != nil {
				return err
			}
			if len(after) == 0 {
				return &order.MissingProductError{ProductID: it.ProductID}
			}
			changes = append(changes, order.StockChange{
				ProductID: it.ProductID,
				SKU:       it.SKU,
				Before:    after[0] - it.Quantity,
				After:     after[0],
				Added:     it.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *OrderRepository) DeleteDraft(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", id, string(order.StatusDraft)).
			Delete(&orderDatamodel.PurchaseOrder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("order_id = ?", id).Delete(&orderDatamodel.OrderItem{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

func (r *OrderRepository) IsProductReferenced(ctx context.Context, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&orderDatamodel.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count > 0, err
}
