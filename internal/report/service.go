package report

import (
	"context"
	"io"
	"log/slog"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/order"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	OrderSummary(ctx context.Context) ([]OrderSummary, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
	AuditLog(ctx context.Context, f audit.Filter) ([]*audit.Entry, error)
	ExportAuditLog(ctx context.Context, f audit.Filter, w io.Writer) error
}

type RepositoryAPI interface {
	OrderSummary(ctx context.Context) ([]OrderSummary, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
}

type AuditSearcher interface {
	Search(ctx context.Context, f audit.Filter) ([]*audit.Entry, error)
}

type Service struct {
	repo   RepositoryAPI
	audit  AuditSearcher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, searcher AuditSearcher, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: searcher, logger: logger}
}

// OrderSummary returns one row per order status in lifecycle order, including
// statuses with no orders.
func (s *Service) OrderSummary(ctx context.Context) ([]OrderSummary, error) {
	rows, err := s.repo.OrderSummary(ctx)
	if err != nil {
		s.logger.Error("failed to summarise orders", "error", err)
		return nil, internal.NewInternalError("failed to build order report", err)
	}

	byStatus := make(map[string]OrderSummary, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}

	statuses := order.Statuses()
	out := make([]OrderSummary, 0, len(statuses))
	for _, st := range statuses {
		r, ok := byStatus[string(st)]
		if !ok {
			r = OrderSummary{Status: string(st), TotalAmount: decimal.Zero}
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	items, err := s.repo.LowStock(ctx)
	if err != nil {
		s.logger.Error("failed to list low stock", "error", err)
		return nil, internal.NewInternalError("failed to build low stock report", err)
	}
	for i := range items {
		items[i].Shortfall = items[i].ReorderThreshold - items[i].Quantity
	}
	return items, nil
}

func (s *Service) AuditLog(ctx context.Context, f audit.Filter) ([]*audit.Entry, error) {
	return s.audit.Search(ctx, f)
}

// ExportAuditLog writes the filtered audit trail as an xlsx workbook.
func (s *Service) ExportAuditLog(ctx context.Context, f audit.Filter, w io.Writer) error {
	entries, err := s.audit.Search(ctx, f)
	if err != nil {
		return err
	}
	if err := audit.WriteWorkbook(w, entries); err != nil {
		s.logger.Error("failed to write audit workbook", "error", err)
		return internal.NewInternalError("failed to export audit log", err)
	}
	return nil
}
