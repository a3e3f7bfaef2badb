package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal/auth"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/internal/order"
	"github.com/frahmantamala/procurement-inventory/internal/product"
	"github.com/frahmantamala/procurement-inventory/internal/report"
	"github.com/frahmantamala/procurement-inventory/internal/supplier"
	"github.com/frahmantamala/procurement-inventory/internal/transport/middleware"
	"github.com/frahmantamala/procurement-inventory/internal/transport/swagger"
	"github.com/frahmantamala/procurement-inventory/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const APIPrefix = "/api"

type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	User     *user.Handler
	Supplier *supplier.Handler
	Product  *product.Handler
	Order    *order.Handler
	Report   *report.Handler
}

// Route is one entry of the API table. A public route skips authentication;
// any other route needs an active user, and a non-empty Capability must be
// granted to that user's role.
type Route struct {
	Method     string
	Pattern    string
	Public     bool
	Capability access.Capability
	Handler    http.HandlerFunc
}

// Routes is the complete API surface, mounted under APIPrefix.
func Routes(h Handlers) []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/ping", Public: true, Handler: h.Health.Ping},
		{Method: http.MethodGet, Pattern: "/health", Public: true, Handler: h.Health.Check},

		{Method: http.MethodPost, Pattern: "/auth/login", Public: true, Handler: h.Auth.Login},
		{Method: http.MethodPost, Pattern: "/auth/forgot-password", Public: true, Handler: h.Auth.ForgotPassword},
		{Method: http.MethodPost, Pattern: "/auth/reset-password", Public: true, Handler: h.Auth.ResetPassword},
		{Method: http.MethodGet, Pattern: "/auth/me", Handler: h.Auth.Me},

		{Method: http.MethodGet, Pattern: "/users", Capability: access.CapUsersManage, Handler: h.User.List},
		{Method: http.MethodPost, Pattern: "/users", Capability: access.CapUsersManage, Handler: h.User.Create},
		{Method: http.MethodGet, Pattern: "/users/{id}", Capability: access.CapUsersManage, Handler: h.User.Get},
		{Method: http.MethodPut, Pattern: "/users/{id}", Capability: access.CapUsersManage, Handler: h.User.Update},
		{Method: http.MethodPut, Pattern: "/users/{id}/reset-password", Capability: access.CapUsersManage, Handler: h.User.ResetPassword},

		{Method: http.MethodGet, Pattern: "/suppliers", Capability: access.CapCatalogRead, Handler: h.Supplier.List},
		{Method: http.MethodPost, Pattern: "/suppliers", Capability: access.CapCatalogWrite, Handler: h.Supplier.Create},
		{Method: http.MethodGet, Pattern: "/suppliers/{id}", Capability: access.CapCatalogRead, Handler: h.Supplier.Get},
		{Method: http.MethodPut, Pattern: "/suppliers/{id}", Capability: access.CapCatalogWrite, Handler: h.Supplier.Update},

		{Method: http.MethodGet, Pattern: "/products", Capability: access.CapCatalogRead, Handler: h.Product.List},
		{Method: http.MethodGet, Pattern: "/products/categories", Capability: access.CapCatalogRead, Handler: h.Product.Categories},
		{Method: http.MethodPost, Pattern: "/products", Capability: access.CapCatalogWrite, Handler: h.Product.Create},
		{Method: http.MethodGet, Pattern: "/products/{id}", Capability: access.CapCatalogRead, Handler: h.Product.Get},
		{Method: http.MethodPut, Pattern: "/products/{id}", Capability: access.CapCatalogWrite, Handler: h.Product.Update},
		{Method: http.MethodDelete, Pattern: "/products/{id}", Capability: access.CapCatalogWrite, Handler: h.Product.Delete},

		{Method: http.MethodGet, Pattern: "/orders", Capability: access.CapOrdersRead, Handler: h.Order.List},
		{Method: http.MethodPost, Pattern: "/orders", Capability: access.CapOrdersWrite, Handler: h.Order.Create},
		{Method: http.MethodGet, Pattern: "/orders/{id}", Capability: access.CapOrdersRead, Handler: h.Order.Get},
		{Method: http.MethodGet, Pattern: "/orders/{id}/document", Capability: access.CapOrdersRead, Handler: h.Order.Document},
		{Method: http.MethodPut, Pattern: "/orders/{id}", Capability: access.CapOrdersWrite, Handler: h.Order.Update},
		{Method: http.MethodPut, Pattern: "/orders/{id}/submit", Capability: access.CapOrdersWrite, Handler: h.Order.Submit},
		{Method: http.MethodPut, Pattern: "/orders/{id}/approve", Capability: access.CapOrdersApprove, Handler: h.Order.Approve},
		{Method: http.MethodPut, Pattern: "/orders/{id}/deliver", Capability: access.CapOrdersWrite, Handler: h.Order.Deliver},
		{Method: http.MethodDelete, Pattern: "/orders/{id}", Capability: access.CapOrdersWrite, Handler: h.Order.Delete},

		{Method: http.MethodGet, Pattern: "/reports/orders", Capability: access.CapReportsView, Handler: h.Report.Orders},
		{Method: http.MethodGet, Pattern: "/reports/low-stock", Capability: access.CapReportsView, Handler: h.Report.LowStock},
		{Method: http.MethodGet, Pattern: "/reports/audit", Capability: access.CapReportsView, Handler: h.Report.AuditLog},
		{Method: http.MethodGet, Pattern: "/reports/audit/export", Capability: access.CapReportsView, Handler: h.Report.ExportAuditLog},
	}
}

type Options struct {
	AllowedOrigins string
	RequestTimeout time.Duration
	Resolver       middleware.PrincipalResolver
	Logger         *slog.Logger
}

// NewRouter mounts routes under APIPrefix behind the global middleware chain,
// plus the OpenAPI document and Swagger UI at the root.
func NewRouter(routes []Route, opts Options) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	if opts.RequestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}

	router.Get("/openapi.yml", swagger.SpecHandler().ServeHTTP)
	router.Handle("/swagger/*", swagger.Handler())

	authenticate := middleware.Authenticate(opts.Resolver)
	router.Route(APIPrefix, func(r chi.Router) {
		for _, rt := range routes {
			chain := []func(http.Handler) http.Handler{}
			if !rt.Public {
				chain = append(chain, authenticate)
				if rt.Capability != "" {
					chain = append(chain, middleware.Require(rt.Capability))
				}
			}
			r.With(chain...).Method(rt.Method, rt.Pattern, rt.Handler)
		}
	})

	return router
}
