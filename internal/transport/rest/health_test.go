package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/procurement-inventory/internal/transport/rest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

var _ = Describe("HealthHandler", func() {
	check := func(h *rest.HealthHandler) (int, rest.HealthResponse) {
		rec := httptest.NewRecorder()
		h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		var body rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return rec.Code, body
	}

	It("is healthy when the database answers", func() {
		code, body := check(rest.NewHealthHandler(fakePinger{}))
		Expect(code).To(Equal(http.StatusOK))
		Expect(body.Status).To(Equal(rest.HealthHealthy))
		Expect(body.Components).To(HaveKey("database"))
	})

	It("answers 503 without leaking the cause", func() {
		code, body := check(rest.NewHealthHandler(fakePinger{err: errors.New("dial tcp 10.0.0.5:5432: refused")}))
		Expect(code).To(Equal(http.StatusServiceUnavailable))
		Expect(body.Status).To(Equal(rest.HealthUnhealthy))
		Expect(body.Components["database"].Message).To(Equal("database unreachable"))
	})

	It("includes registered extra checks", func() {
		h := rest.NewHealthHandler(fakePinger{}).WithCheck("mail", func(ctx context.Context) error {
			return errors.New("no route")
		})
		code, body := check(h)
		Expect(code).To(Equal(http.StatusServiceUnavailable))
		Expect(body.Components["database"].Status).To(Equal(rest.HealthHealthy))
		Expect(body.Components["mail"].Status).To(Equal(rest.HealthUnhealthy))
	})

	It("answers liveness without touching dependencies", func() {
		rec := httptest.NewRecorder()
		rest.NewHealthHandler(fakePinger{err: errors.New("down")}).Ping(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("OK"))
	})
})
