package audit_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

type mockAuditRepository struct {
	entries     []*audit.Entry
	createError error
	lastFilter  audit.Filter
}

func (m *mockAuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	if m.createError != nil {
		return m.createError
	}
	e.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepository) Search(ctx context.Context, f audit.Filter) ([]*audit.Entry, error) {
	m.lastFilter = f
	return m.entries, nil
}

var _ = Describe("Audit Service", func() {
	var (
		repo    *mockAuditRepository
		service *audit.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = &mockAuditRepository{}
		service = audit.NewService(repo, logger.Discard(), 1000)
		ctx = internal.ContextWithPrincipal(context.Background(), &internal.Principal{ID: 42, Role: access.RoleProcurement})
		ctx = internal.ContextWithClientIP(ctx, "10.0.0.7")
	})

	Describe("Record", func() {
		It("fills actor and client address from the request context", func() {
			service.Record(ctx, audit.Entry{Action: audit.ActionCreate, EntityType: audit.EntityProduct, EntityID: "5"})

			Expect(repo.entries).To(HaveLen(1))
			Expect(repo.entries[0].ActorID).To(Equal(int64(42)))
			Expect(repo.entries[0].IPAddress).To(Equal("10.0.0.7"))
			Expect(repo.entries[0].CreatedAt).NotTo(BeZero())
		})

		It("keeps an explicit actor", func() {
			service.Record(ctx, audit.Entry{ActorID: 9, Action: audit.ActionResetPassword, EntityType: audit.EntityUser, EntityID: "9"})
			Expect(repo.entries[0].ActorID).To(Equal(int64(9)))
		})

		It("swallows store failures", func() {
			repo.createError = errors.New("connection refused")
			Expect(func() {
				service.Record(ctx, audit.Entry{Action: audit.ActionDelete, EntityType: audit.EntityPurchaseOrder, EntityID: "1"})
			}).NotTo(Panic())
			Expect(repo.entries).To(BeEmpty())
		})

		It("still writes when the request context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			service.Record(cancelled, audit.Entry{Action: audit.ActionSubmit, EntityType: audit.EntityPurchaseOrder, EntityID: "3"})
			Expect(repo.entries).To(HaveLen(1))
		})
	})

	Describe("Search", func() {
		It("caps the limit at the configured maximum", func() {
			_, err := service.Search(ctx, audit.Filter{Limit: 50000})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(1000))
		})
	})
})

var _ = Describe("ParseFilter", func() {
	It("expands dates to whole days", func() {
		f, err := audit.ParseFilter(url.Values{
			"start_date":  {"2024-03-01"},
			"end_date":    {"2024-03-02"},
			"action":      {"approve"},
			"entity_type": {"PurchaseOrder"},
			"user_id":     {"3"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.From).To(Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
		Expect(f.To).To(Equal(time.Date(2024, 3, 2, 23, 59, 59, 999000000, time.UTC)))
		Expect(f.Action).To(Equal(audit.ActionApprove))
		Expect(f.EntityType).To(Equal(audit.EntityPurchaseOrder))
		Expect(f.UserID).To(Equal(int64(3)))
	})

	It("rejects malformed dates", func() {
		_, err := audit.ParseFilter(url.Values{"start_date": {"03/01/2024"}})
		Expect(err).To(HaveOccurred())
	})

	It("rejects an inverted range", func() {
		_, err := audit.ParseFilter(url.Values{"start_date": {"2024-03-05"}, "end_date": {"2024-03-01"}})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDateRange))
	})
})

var _ = Describe("WriteWorkbook", func() {
	It("writes a header row and one row per entry", func() {
		entries := []*audit.Entry{
			{
				Action:     audit.ActionDeliver,
				EntityType: audit.EntityPurchaseOrder,
				EntityID:   "12",
				Details:    "Order PO-1 delivered",
				Actor:      &audit.Actor{ID: 1, Name: "Pat", Email: "pat@corp.io", Role: "PROCUREMENT"},
				CreatedAt:  time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
			},
		}

		var buf bytes.Buffer
		Expect(audit.WriteWorkbook(&buf, entries)).To(Succeed())

		f, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		rows, err := f.GetRows("Audit Log")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0][0]).To(Equal("Timestamp"))
		Expect(rows[1][1]).To(Equal("Pat"))
		Expect(rows[1][4]).To(Equal("DELIVER"))
	})
})
