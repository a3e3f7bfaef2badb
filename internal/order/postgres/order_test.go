package postgres_test

import (
	"context"
	"testing"
	"time"

	orderDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/order"
	productDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/product"
	supplierDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/supplier"
	userDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/user"
	"github.com/frahmantamala/procurement-inventory/internal/order"
	orderPostgres "github.com/frahmantamala/procurement-inventory/internal/order/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOrderPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Order Postgres Suite")
}

var _ = Describe("Order Repository", func() {
	var (
		db      *gorm.DB
		repo    order.RepositoryAPI
		ctx     context.Context
		buyer   *userDatamodel.User
		boss    *userDatamodel.User
		acme    *supplierDatamodel.Supplier
		widget  *productDatamodel.Product
		gadget  *productDatamodel.Product
		instant time.Time
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(
			&userDatamodel.User{},
			&supplierDatamodel.Supplier{},
			&productDatamodel.Product{},
			&orderDatamodel.PurchaseOrder{},
			&orderDatamodel.OrderItem{},
		)).To(Succeed())

		buyer = &userDatamodel.User{Name: "Bob", Email: "bob@corp.io", PasswordHash: "x", Role: "PROCUREMENT", IsActive: true}
		boss = &userDatamodel.User{Name: "Ada", Email: "ada@corp.io", PasswordHash: "x", Role: "ADMIN", IsActive: true}
		Expect(db.Create(buyer).Error).To(Succeed())
		Expect(db.Create(boss).Error).To(Succeed())

		acme = &supplierDatamodel.Supplier{CompanyName: "Acme", PaymentTerms: "NET_30", Status: "ACTIVE"}
		Expect(db.Create(acme).Error).To(Succeed())

		widget = &productDatamodel.Product{SKU: "WID-1", Name: "Widget", Quantity: 5, UnitPrice: decimal.NewFromInt(50), ReorderThreshold: 10, SupplierID: acme.ID, Status: "ACTIVE"}
		gadget = &productDatamodel.Product{SKU: "GAD-1", Name: "Gadget", Quantity: 1, UnitPrice: decimal.NewFromInt(2), ReorderThreshold: 10, SupplierID: acme.ID, Status: "ACTIVE"}
		Expect(db.Create(widget).Error).To(Succeed())
		Expect(db.Create(gadget).Error).To(Succeed())

		repo = orderPostgres.NewOrderRepository(db)
		ctx = context.Background()
		instant = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	})

	newOrder := func(status order.Status, lines ...order.Item) *order.Order {
		for i := range lines {
			lines[i].LineNo = i + 1
			lines[i].TotalPrice = lines[i].UnitPrice.Mul(decimal.NewFromInt(lines[i].Quantity))
		}
		o := &order.Order{
			OrderNumber: order.NewOrderNumber(time.Now()),
			SupplierID:  &acme.ID,
			Items:       lines,
			TotalAmount: order.Total(lines),
			Status:      status,
			RequestedBy: buyer.ID,
		}
		Expect(repo.Create(ctx, o)).To(Succeed())
		return o
	}

	widgetLine := func(qty int64) order.Item {
		return order.Item{ProductID: widget.ID, SKU: widget.SKU, Name: widget.Name, Quantity: qty, UnitPrice: widget.UnitPrice}
	}
	gadgetLine := func(qty int64) order.Item {
		return order.Item{ProductID: gadget.ID, SKU: gadget.SKU, Name: gadget.Name, Quantity: qty, UnitPrice: gadget.UnitPrice}
	}

	stockOf := func(id int64) int64 {
		var p productDatamodel.Product
		Expect(db.First(&p, id).Error).To(Succeed())
		return p.Quantity
	}

	It("reads back lines in order with names joined", func() {
		o := newOrder(order.StatusDraft, widgetLine(10), gadgetLine(3))

		got, err := repo.GetByID(ctx, o.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.SupplierName).To(Equal("Acme"))
		Expect(got.RequestedByName).To(Equal("Bob"))
		Expect(got.Items).To(HaveLen(2))
		Expect(got.Items[0].SKU).To(Equal("WID-1"))
		Expect(got.Items[1].LineNo).To(Equal(2))
		Expect(got.TotalAmount.Equal(decimal.NewFromInt(506))).To(BeTrue())
	})

	It("returns the not found sentinel", func() {
		_, err := repo.GetByID(ctx, 999)
		Expect(err).To(Equal(order.ErrOrderNotFound))
	})

	It("lists by status with items attached", func() {
		newOrder(order.StatusDraft, widgetLine(1))
		sub := newOrder(order.StatusSubmitted, gadgetLine(2))

		all, err := repo.List(ctx, order.ListFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))

		submitted, err := repo.List(ctx, order.ListFilter{Status: order.StatusSubmitted})
		Expect(err).NotTo(HaveOccurred())
		Expect(submitted).To(HaveLen(1))
		Expect(submitted[0].ID).To(Equal(sub.ID))
		Expect(submitted[0].Items).To(HaveLen(1))
	})

	It("applies transitions only from the expected status", func() {
		o := newOrder(order.StatusDraft, widgetLine(1))

		ok, err := repo.Transition(ctx, o.ID, order.StatusSubmitted, order.StatusApproved, instant, boss.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		ok, err = repo.Transition(ctx, o.ID, order.StatusDraft, order.StatusSubmitted, instant, buyer.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = repo.Transition(ctx, o.ID, order.StatusSubmitted, order.StatusApproved, instant, boss.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		got, err := repo.GetByID(ctx, o.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status).To(Equal(order.StatusApproved))
		Expect(got.SubmittedAt).NotTo(BeNil())
		Expect(*got.ApprovedBy).To(Equal(boss.ID))
		Expect(got.ApprovedByName).To(Equal("Ada"))
	})

	It("replaces draft lines and refuses once submitted", func() {
		o := newOrder(order.StatusDraft, widgetLine(1), gadgetLine(1))
		o.Items = []order.Item{widgetLine(4)}
		o.Items[0].LineNo = 1
		o.Items[0].TotalPrice = decimal.NewFromInt(200)
		o.TotalAmount = decimal.NewFromInt(200)

		ok, err := repo.ReplaceDraft(ctx, o)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		got, err := repo.GetByID(ctx, o.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Items).To(HaveLen(1))
		Expect(got.Items[0].Quantity).To(Equal(int64(4)))
		Expect(got.TotalAmount.Equal(decimal.NewFromInt(200))).To(BeTrue())

		sub := newOrder(order.StatusSubmitted, widgetLine(1))
		ok, err = repo.ReplaceDraft(ctx, sub)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	Describe("Deliver", func() {
		It("adds every line to stock and marks the order delivered", func() {
			o := newOrder(order.StatusApproved, widgetLine(10), gadgetLine(4))

			changes, err := repo.Deliver(ctx, o.ID, instant, boss.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(changes).To(Equal([]order.StockChange{
				{ProductID: widget.ID, SKU: "WID-1", Before: 5, After: 15, Added: 10},
				{ProductID: gadget.ID, SKU: "GAD-1", Before: 1, After: 5, Added: 4},
			}))
			Expect(stockOf(widget.ID)).To(Equal(int64(15)))

			got, err := repo.GetByID(ctx, o.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(order.StatusDelivered))
			Expect(got.DeliveredAt).NotTo(BeNil())
		})

		It("refuses orders that are not approved", func() {
			o := newOrder(order.StatusSubmitted, widgetLine(10))

			_, err := repo.Deliver(ctx, o.ID, instant, boss.ID)
			Expect(err).To(Equal(order.ErrNotApproved))
			Expect(stockOf(widget.ID)).To(Equal(int64(5)))
		})

		It("rolls back when a product is missing", func() {
			o := newOrder(order.StatusApproved, widgetLine(10), gadgetLine(4))
			Expect(db.Delete(&productDatamodel.Product{}, gadget.ID).Error).To(Succeed())

			_, err := repo.Deliver(ctx, o.ID, instant, boss.ID)
			var missing *order.MissingProductError
			Expect(err).To(BeAssignableToTypeOf(missing))
			Expect(err.(*order.MissingProductError).ProductID).To(Equal(gadget.ID))

			Expect(stockOf(widget.ID)).To(Equal(int64(5)))
			got, err := repo.GetByID(ctx, o.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(order.StatusApproved))
		})
	})

	It("deletes drafts with their lines", func() {
		o := newOrder(order.StatusDraft, widgetLine(1))
		sub := newOrder(order.StatusSubmitted, widgetLine(1))

		ok, err := repo.DeleteDraft(ctx, o.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		var lines int64
		Expect(db.Model(&orderDatamodel.OrderItem{}).Where("order_id = ?", o.ID).Count(&lines).Error).To(Succeed())
		Expect(lines).To(BeZero())

		ok, err = repo.DeleteDraft(ctx, sub.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("knows which products are referenced", func() {
		newOrder(order.StatusDraft, widgetLine(1))

		used, err := repo.IsProductReferenced(ctx, widget.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(used).To(BeTrue())

		used, err = repo.IsProductReferenced(ctx, gadget.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(used).To(BeFalse())
	})
})
