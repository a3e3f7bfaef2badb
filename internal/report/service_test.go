package report_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/report"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

type mockRepository struct {
	summary []report.OrderSummary
	low     []report.LowStockItem
	err     error
}

func (m *mockRepository) OrderSummary(ctx context.Context) ([]report.OrderSummary, error) {
	return m.summary, m.err
}

func (m *mockRepository) LowStock(ctx context.Context) ([]report.LowStockItem, error) {
	return m.low, m.err
}

type mockSearcher struct {
	entries []*audit.Entry
	last    audit.Filter
}

func (m *mockSearcher) Search(ctx context.Context, f audit.Filter) ([]*audit.Entry, error) {
	m.last = f
	return m.entries, nil
}

var _ = Describe("Report Service", func() {
	var (
		repo     *mockRepository
		searcher *mockSearcher
		service  *report.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = &mockRepository{}
		searcher = &mockSearcher{}
		service = report.NewService(repo, searcher, logger.Discard())
		ctx = context.Background()
	})

	It("returns every status in lifecycle order", func() {
		repo.summary = []report.OrderSummary{
			{Status: "APPROVED", Count: 2, TotalAmount: decimal.RequireFromString("120.50")},
			{Status: "DRAFT", Count: 1, TotalAmount: decimal.NewFromInt(500)},
		}

		rows, err := service.OrderSummary(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0].Status).To(Equal("DRAFT"))
		Expect(rows[1].Status).To(Equal("SUBMITTED"))
		Expect(rows[1].Count).To(BeZero())
		Expect(rows[1].TotalAmount.IsZero()).To(BeTrue())
		Expect(rows[2].Count).To(Equal(int64(2)))
		Expect(rows[3].Status).To(Equal("DELIVERED"))
	})

	It("hides repository failures behind an internal error", func() {
		repo.err = errors.New("connection reset")

		_, err := service.OrderSummary(ctx)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(500))
	})

	It("computes the shortfall of low stock items", func() {
		repo.low = []report.LowStockItem{{SKU: "A", Quantity: 3, ReorderThreshold: 10}}

		items, err := service.LowStock(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items[0].Shortfall).To(Equal(int64(7)))
	})

	It("exports the filtered audit log as a workbook", func() {
		searcher.entries = []*audit.Entry{
			{Action: audit.ActionLogin, EntityType: audit.EntityUser, EntityID: "1", Actor: &audit.Actor{Name: "Ada"}},
		}

		var buf bytes.Buffer
		Expect(service.ExportAuditLog(ctx, audit.Filter{Action: audit.ActionLogin}, &buf)).To(Succeed())
		Expect(searcher.last.Action).To(Equal(audit.ActionLogin))

		f, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		rows, err := f.GetRows("Audit Log")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[1][4]).To(Equal("LOGIN"))
	})
})
