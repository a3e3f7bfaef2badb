package main_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestProcurementInventory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ProcurementInventory Suite")
}
