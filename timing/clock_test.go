package timing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ManualClock", func() {
	var (
		start time.Time
		clock *ManualClock
	)

	BeforeEach(func() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock = NewManualClock(start)
	})

	It("should not move by itself", func() {
		Expect(clock.Now()).To(Equal(start))
		Expect(clock.Now()).To(Equal(start))
	})

	It("should advance when sleeping", func() {
		clock.Sleep(3 * time.Millisecond)
		clock.Sleep(2 * time.Millisecond)

		Expect(clock.Now().Sub(start)).To(Equal(5 * time.Millisecond))
	})

	It("should ignore negative durations", func() {
		clock.Advance(-time.Second)

		Expect(clock.Now()).To(Equal(start))
	})
})

var _ = Describe("SystemClock", func() {
	It("should block for the requested duration", func() {
		clock := SystemClock{}
		before := clock.Now()

		clock.Sleep(2 * time.Millisecond)

		Expect(clock.Now().Sub(before)).To(BeNumerically(">=", 2*time.Millisecond))
	})
})
