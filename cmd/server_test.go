package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/procurement-inventory/internal"
	auditDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/audit"
	orderDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/order"
	productDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/product"
	supplierDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/supplier"
	userDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/user"
	"github.com/frahmantamala/procurement-inventory/internal/core/events"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

var _ = Describe("API wiring", func() {
	var (
		router *chi.Mux
		gdb    *gorm.DB
	)

	BeforeEach(func() {
		var err error
		gdb, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(gdb.AutoMigrate(
			&userDatamodel.User{},
			&supplierDatamodel.Supplier{},
			&productDatamodel.Product{},
			&orderDatamodel.PurchaseOrder{},
			&orderDatamodel.OrderItem{},
			&auditDatamodel.AuditLog{},
		)).To(Succeed())

		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		for _, u := range []userDatamodel.User{
			{Name: "Ada", Email: "admin@corp.io", Role: "ADMIN"},
			{Name: "Bob", Email: "buyer@corp.io", Role: "PROCUREMENT"},
			{Name: "Eve", Email: "audit@corp.io", Role: "AUDITOR"},
		} {
			u.PasswordHash = string(hash)
			u.IsActive = true
			Expect(gdb.Create(&u).Error).To(Succeed())
		}

		cfg := &internal.Config{
			Env:      "test",
			Security: internal.SecurityConfig{JWTSecret: "0123456789abcdef0123456789abcdef", BCryptCost: bcrypt.MinCost},
		}
		cfg.ApplyDefaults()

		db := &Database{SQL: sqlx.NewDb(sqlDB, "sqlite3"), Gorm: gdb}
		lg := logger.Discard()
		router = buildRouter(cfg, db, events.NewEventBus(lg), lg)
	})

	call := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var out map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return out
	}

	login := func(email string) string {
		rec := call(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		return decode(rec)["token"].(string)
	}

	It("serves health checks without a token", func() {
		Expect(call(http.MethodGet, "/api/ping", "", nil).Code).To(Equal(http.StatusOK))

		rec := call(http.MethodGet, "/api/health", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["status"]).To(Equal("healthy"))
	})

	It("rejects protected routes without a token", func() {
		Expect(call(http.MethodGet, "/api/orders", "", nil).Code).To(Equal(http.StatusUnauthorized))
	})

	It("runs an order from draft to delivery and restocks the product", func() {
		admin := login("admin@corp.io")
		buyer := login("buyer@corp.io")
		auditor := login("audit@corp.io")

		rec := call(http.MethodPost, "/api/suppliers", admin, map[string]interface{}{"company_name": "Acme"})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		supplierID := decode(rec)["id"]

		rec = call(http.MethodPost, "/api/products", admin, map[string]interface{}{
			"sku": "WID-1", "name": "Widget", "quantity": 5, "unit_price": "50", "supplier_id": supplierID,
		})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		productID := decode(rec)["id"]

		rec = call(http.MethodPost, "/api/orders", buyer, map[string]interface{}{
			"items": []map[string]interface{}{{"product_id": productID, "quantity": 10}},
		})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		created := decode(rec)
		Expect(created["status"]).To(Equal("DRAFT"))
		total, err := decimal.NewFromString(created["total_amount"].(string))
		Expect(err).NotTo(HaveOccurred())
		Expect(total.Equal(decimal.NewFromInt(500))).To(BeTrue())
		orderPath := "/api/orders/" + jsonID(created["id"])

		Expect(call(http.MethodPut, orderPath+"/approve", admin, nil).Code).To(Equal(http.StatusBadRequest))
		Expect(call(http.MethodPut, orderPath+"/submit", buyer, nil).Code).To(Equal(http.StatusOK))
		Expect(call(http.MethodPut, orderPath+"/approve", buyer, nil).Code).To(Equal(http.StatusForbidden))
		Expect(call(http.MethodPut, orderPath+"/approve", admin, nil).Code).To(Equal(http.StatusOK))

		rec = call(http.MethodPut, orderPath+"/deliver", buyer, nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

		var stock int64
		Expect(gdb.Table("products").Select("quantity").Where("sku = ?", "WID-1").Row().Scan(&stock)).To(Succeed())
		Expect(stock).To(Equal(int64(15)))

		Expect(call(http.MethodGet, "/api/orders", auditor, nil).Code).To(Equal(http.StatusForbidden))

		rec = call(http.MethodGet, "/api/reports/audit?action=DELIVER", auditor, nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring("PO-"))
	})
})

func jsonID(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
