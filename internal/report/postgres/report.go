package postgres

import (
	"context"

	"github.com/frahmantamala/procurement-inventory/internal/report"
	"github.com/jmoiron/sqlx"
)

// ReportRepository runs the read-only aggregate queries on plain SQL.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

const orderSummaryQuery = `
SELECT status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount
FROM purchase_orders
GROUP BY status`

func (r *ReportRepository) OrderSummary(ctx context.Context) ([]report.OrderSummary, error) {
	var rows []report.OrderSummary
	if err := r.db.SelectContext(ctx, &rows, orderSummaryQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

const lowStockQuery = `
SELECT p.id, p.sku, p.name, COALESCE(p.category, '') AS category, p.quantity, p.reorder_threshold,
       p.supplier_id, COALESCE(s.company_name, '') AS supplier_name
FROM products p
LEFT JOIN suppliers s ON s.id = p.supplier_id
WHERE p.status = ? AND p.quantity <= p.reorder_threshold
ORDER BY p.quantity ASC, p.sku ASC`

func (r *ReportRepository) LowStock(ctx context.Context) ([]report.LowStockItem, error) {
	var rows []report.LowStockItem
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(lowStockQuery), "ACTIVE"); err != nil {
		return nil, err
	}
	return rows, nil
}
