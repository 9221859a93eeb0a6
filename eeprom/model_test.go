package eeprom

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Model", func() {
	It("should find predefined models regardless of case", func() {
		m, ok := LookupModel("m24c64")

		Expect(ok).To(BeTrue())
		Expect(m).To(Equal(M24C64))
	})

	It("should not find unknown models", func() {
		_, ok := LookupModel("AT24C02")

		Expect(ok).To(BeFalse())
	})

	It("should accept every predefined model", func() {
		for _, m := range Models {
			Expect(m.Validate()).To(Succeed())
		}
	})

	DescribeTable("rejecting bad geometry",
		func(m Model) {
			Expect(m.Validate()).To(MatchError(ErrInvalidArgument))
		},
		Entry("no capacity", Model{Capacity: 0, PageSize: 32}),
		Entry("too large", Model{Capacity: 1 << 17, PageSize: 32}),
		Entry("no page", Model{Capacity: 8192, PageSize: 0}),
		Entry("uneven pages", Model{Capacity: 8192, PageSize: 48}),
	)
})
