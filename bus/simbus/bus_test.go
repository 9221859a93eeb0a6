package simbus

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/eeprom/bus"
	"github.com/sarchlab/eeprom/timing"
)

var _ = Describe("Bus", func() {
	var (
		clock  *timing.ManualClock
		device *Device
		b      *Bus
	)

	BeforeEach(func() {
		clock = timing.NewManualClock(time.Unix(0, 0))
		device = MakeBuilder().WithClock(clock).Build("EEPROM")
		b = NewBus(8)
		b.Attach(0x50, device)
		b.EnableLog()
	})

	It("should report the buffer size as transaction limit", func() {
		Expect(b.MaxTransactionSize()).To(Equal(8))
		Expect(NewBus(0).MaxTransactionSize()).To(Equal(DefaultBufferSize))
	})

	It("should NACK an address without peripheral", func() {
		b.BeginTransmission(0x51)

		Expect(b.EndTransmission(true)).To(Equal(bus.StatusAddrNACK))
		Expect(b.RequestFrom(0x51, 1)).To(Equal(0))
	})

	It("should fail to end a transaction that was never begun", func() {
		Expect(b.EndTransmission(true)).To(Equal(bus.StatusOther))
	})

	It("should limit the payload to the buffer size", func() {
		b.BeginTransmission(0x50)

		Expect(b.Send([]byte{0, 0})).To(Equal(2))
		Expect(b.Send([]byte{1, 2, 3, 4, 5, 6, 7, 8})).To(Equal(6))
		Expect(b.EndTransmission(true)).To(Equal(bus.StatusOK))

		Expect(device.Contents(0, 7)).To(Equal([]byte{1, 2, 3, 4, 5, 6, 0xff}))
	})

	It("should read back through a repeated start", func() {
		b.BeginTransmission(0x50)
		b.Send([]byte{0x00, 0x40, 0xde, 0xad})
		Expect(b.EndTransmission(true)).To(Equal(bus.StatusOK))

		b.BeginTransmission(0x50)
		b.Send([]byte{0x00, 0x40})
		Expect(b.EndTransmission(false)).To(Equal(bus.StatusAddrNACK))

		clock.Advance(5 * time.Millisecond)

		b.BeginTransmission(0x50)
		b.Send([]byte{0x00, 0x40})
		Expect(b.EndTransmission(false)).To(Equal(bus.StatusOK))
		Expect(b.RequestFrom(0x50, 2)).To(Equal(2))

		v, ok := b.Receive()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(byte(0xde)))
		v, ok = b.Receive()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(byte(0xad)))
		_, ok = b.Receive()
		Expect(ok).To(BeFalse())

		log := b.Transactions()
		Expect(log).To(HaveLen(4))
		Expect(log[3].Kind).To(Equal(TransactionRead))
		Expect(log[3].Data).To(Equal([]byte{0xde, 0xad}))
	})

	It("should panic when attaching twice to one address", func() {
		Expect(func() { b.Attach(0x50, device) }).To(Panic())
	})
})
