package supplier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/internal/supplier"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSupplier(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Supplier Suite")
}

type mockRepository struct {
	rows       map[int64]*supplier.Supplier
	nextID     int64
	lastStatus supplier.Status
}

func (m *mockRepository) List(ctx context.Context, status supplier.Status) ([]*supplier.Supplier, error) {
	m.lastStatus = status
	var out []*supplier.Supplier
	for id := int64(1); id < m.nextID; id++ {
		s, ok := m.rows[id]
		if ok && (status == "" || s.Status == status) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*supplier.Supplier, error) {
	if s, ok := m.rows[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, supplier.ErrSupplierNotFound
}

func (m *mockRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	s.ID = m.nextID
	m.nextID++
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *mockRepository) Update(ctx context.Context, s *supplier.Supplier) error {
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

type recordedAudit struct {
	entries []audit.Entry
}

func (r *recordedAudit) Record(ctx context.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

func as(role access.Role) context.Context {
	return internal.ContextWithPrincipal(context.Background(), &internal.Principal{ID: 1, Role: role})
}

var _ = Describe("Supplier Service", func() {
	var (
		repo     *mockRepository
		recorder *recordedAudit
		service  *supplier.Service
		active   *supplier.Supplier
		inactive *supplier.Supplier
	)

	BeforeEach(func() {
		repo = &mockRepository{rows: map[int64]*supplier.Supplier{}, nextID: 1}
		recorder = &recordedAudit{}
		service = supplier.NewService(repo, recorder, logger.Discard())

		var err error
		active, err = service.Create(as(access.RoleAdmin), supplier.CreateSupplierDTO{CompanyName: "Acme", Email: "Sales@Acme.io"})
		Expect(err).NotTo(HaveOccurred())
		inactive, err = service.Create(as(access.RoleAdmin), supplier.CreateSupplierDTO{CompanyName: "Dormant", Status: "INACTIVE"})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("applies defaults and audits the request body", func() {
			Expect(active.Status).To(Equal(supplier.StatusActive))
			Expect(active.PaymentTerms).To(Equal(supplier.TermsNet30))
			Expect(active.Email).To(Equal("sales@acme.io"))

			Expect(recorder.entries).To(HaveLen(2))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionCreate))
			Expect(recorder.entries[0].EntityType).To(Equal(audit.EntitySupplier))
			Expect(string(recorder.entries[0].Changes)).To(ContainSubstring(`"company_name":"Acme"`))
		})

		DescribeTable("rejects invalid payloads",
			func(dto supplier.CreateSupplierDTO, field string) {
				_, err := service.Create(as(access.RoleAdmin), dto)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(400))
				details := appErr.Details.(internal.ValidationErrors)
				Expect(details.Errors[0].Field).To(Equal(field))
			},
			Entry("missing name", supplier.CreateSupplierDTO{}, "company_name"),
			Entry("bad email", supplier.CreateSupplierDTO{CompanyName: "X", Email: "nope"}, "email"),
			Entry("unknown terms", supplier.CreateSupplierDTO{CompanyName: "X", PaymentTerms: "NET_90"}, "payment_terms"),
			Entry("unknown status", supplier.CreateSupplierDTO{CompanyName: "X", Status: "GONE"}, "status"),
		)
	})

	Describe("visibility", func() {
		It("shows everything to admins", func() {
			list, err := service.List(as(access.RoleAdmin))
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(repo.lastStatus).To(BeEmpty())
		})

		It("shows only active suppliers to procurement", func() {
			list, err := service.List(as(access.RoleProcurement))
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].CompanyName).To(Equal("Acme"))
		})

		It("hides an inactive supplier from procurement on get", func() {
			_, err := service.Get(as(access.RoleProcurement), inactive.ID)
			Expect(errors.Is(err, supplier.ErrSupplierNotFound)).To(BeTrue())

			got, err := service.Get(as(access.RoleAdmin), inactive.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(supplier.StatusInactive))
		})
	})

	Describe("Update", func() {
		It("changes only the given fields", func() {
			terms := "NET_60"
			status := "BLACKLISTED"
			got, err := service.Update(as(access.RoleAdmin), active.ID, supplier.UpdateSupplierDTO{PaymentTerms: &terms, Status: &status})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CompanyName).To(Equal("Acme"))
			Expect(got.PaymentTerms).To(Equal(supplier.TermsNet60))
			Expect(got.Status).To(Equal(supplier.StatusBlacklisted))
			Expect(recorder.entries[len(recorder.entries)-1].Action).To(Equal(audit.ActionUpdate))
		})

		It("returns not found for unknown suppliers", func() {
			name := "Ghost"
			_, err := service.Update(as(access.RoleAdmin), 99, supplier.UpdateSupplierDTO{CompanyName: &name})
			Expect(errors.Is(err, supplier.ErrSupplierNotFound)).To(BeTrue())
		})
	})
})
