package rest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/internal/transport/rest"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

// tokenResolver treats the bearer token as the role name.
type tokenResolver struct{}

func (tokenResolver) ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error) {
	role, err := access.ParseRole(token)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	return &internal.Principal{ID: 1, Role: role}, nil
}

func stubbed(routes []rest.Route) []rest.Route {
	out := make([]rest.Route, len(routes))
	for i, rt := range routes {
		rt.Handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}
		out[i] = rt
	}
	return out
}

func concretePath(pattern string) string {
	return rest.APIPrefix + strings.ReplaceAll(pattern, "{id}", "1")
}

var _ = Describe("Router", func() {
	var (
		routes []rest.Route
		router http.Handler
	)

	BeforeEach(func() {
		routes = stubbed(rest.Routes(rest.Handlers{}))
		router = rest.NewRouter(routes, rest.Options{
			Resolver: tokenResolver{},
			Logger:   logger.Discard(),
		})
	})

	call := func(method, path, token string) int {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	It("lets anyone reach the public routes", func() {
		for _, rt := range routes {
			if rt.Public {
				Expect(call(rt.Method, concretePath(rt.Pattern), "")).To(Equal(http.StatusNoContent), rt.Pattern)
			}
		}
	})

	It("rejects protected routes without a valid token", func() {
		for _, rt := range routes {
			if rt.Public {
				continue
			}
			Expect(call(rt.Method, concretePath(rt.Pattern), "")).To(Equal(http.StatusUnauthorized), rt.Pattern)
			Expect(call(rt.Method, concretePath(rt.Pattern), "nobody")).To(Equal(http.StatusUnauthorized), rt.Pattern)
		}
	})

	It("admits each role exactly where its capabilities allow", func() {
		for _, role := range access.Roles() {
			for _, rt := range routes {
				if rt.Public {
					continue
				}
				want := http.StatusNoContent
				if rt.Capability != "" && !access.Allows(role, rt.Capability) {
					want = http.StatusForbidden
				}
				Expect(call(rt.Method, concretePath(rt.Pattern), string(role))).
					To(Equal(want), "%s %s %s", role, rt.Method, rt.Pattern)
			}
		}
	})

	It("denies auditors every catalog, order and user route", func() {
		for _, rt := range routes {
			if !strings.HasPrefix(rt.Pattern, "/products") &&
				!strings.HasPrefix(rt.Pattern, "/suppliers") &&
				!strings.HasPrefix(rt.Pattern, "/orders") &&
				!strings.HasPrefix(rt.Pattern, "/users") {
				continue
			}
			Expect(call(rt.Method, concretePath(rt.Pattern), "AUDITOR")).To(Equal(http.StatusForbidden), rt.Pattern)
		}
		Expect(call(http.MethodGet, "/api/reports/orders", "AUDITOR")).To(Equal(http.StatusNoContent))
		Expect(call(http.MethodGet, "/api/reports/audit", "AUDITOR")).To(Equal(http.StatusNoContent))
	})

	It("keeps procurement out of users and reports but lets it deliver", func() {
		Expect(call(http.MethodGet, "/api/users", "PROCUREMENT")).To(Equal(http.StatusForbidden))
		Expect(call(http.MethodGet, "/api/reports/orders", "PROCUREMENT")).To(Equal(http.StatusForbidden))
		Expect(call(http.MethodPut, "/api/orders/1/approve", "PROCUREMENT")).To(Equal(http.StatusForbidden))
		Expect(call(http.MethodPut, "/api/orders/1/deliver", "PROCUREMENT")).To(Equal(http.StatusNoContent))
		Expect(call(http.MethodPut, "/api/orders/1/approve", "ADMIN")).To(Equal(http.StatusNoContent))
	})

	It("serves the api document", func() {
		Expect(call(http.MethodGet, "/openapi.yml", "")).To(Equal(http.StatusOK))
	})
})
