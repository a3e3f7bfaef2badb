package swagger_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/procurement-inventory/internal/transport/rest"
	"github.com/frahmantamala/procurement-inventory/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSwagger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swagger Suite")
}

var _ = Describe("OpenAPI document", func() {
	It("is valid", func() {
		_, err := swagger.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
	})

	It("documents every mounted route", func() {
		doc, err := swagger.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for _, rt := range rest.Routes(rest.Handlers{}) {
			item := doc.Paths.Value(rt.Pattern)
			Expect(item).NotTo(BeNil(), rt.Pattern)
			Expect(item.GetOperation(rt.Method)).NotTo(BeNil(), "%s %s", rt.Method, rt.Pattern)
		}
	})

	It("declares bearer auth", func() {
		doc, err := swagger.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Components.SecuritySchemes).To(HaveKey("bearerAuth"))
	})
})
