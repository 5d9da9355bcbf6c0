package lvp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sharathat45/load-value-predictor/timing/lvp"
)

var _ = Describe("LVPT", func() {
	var table *lvp.LVPT

	BeforeEach(func() {
		table = lvp.NewLVPT(16, 2)
	})

	It("reports invalid before any write", func() {
		Expect(table.Valid(0x1000, 0)).To(BeFalse())
		Expect(table.Lookup(0x1000, 0)).To(Equal(uint64(0)))
	})

	It("round-trips a stored value for the matching thread", func() {
		table.Update(0x2000, 0xdeadbeef, 3)
		Expect(table.Valid(0x2000, 3)).To(BeTrue())
		Expect(table.Lookup(0x2000, 3)).To(Equal(uint64(0xdeadbeef)))
	})

	It("rejects a lookup from a different thread on a shared slot", func() {
		table.Update(0x2000, 0xdeadbeef, 3)
		Expect(table.Valid(0x2000, 4)).To(BeFalse())
		Expect(table.Lookup(0x2000, 4)).To(Equal(uint64(0)))
	})

	It("unconditionally overwrites on update, including tid ownership", func() {
		table.Update(0x2000, 1, 0)
		table.Update(0x2000, 2, 1)
		Expect(table.Valid(0x2000, 0)).To(BeFalse())
		Expect(table.Lookup(0x2000, 1)).To(Equal(uint64(2)))
	})

	It("resets every entry to invalid", func() {
		table.Update(0x2000, 1, 0)
		table.Reset()
		Expect(table.Valid(0x2000, 0)).To(BeFalse())
	})
})
