package i2cdev

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/eeprom/bus"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Transport", func() {
	var (
		mockCtrl  *gomock.Controller
		conn      *MockConn
		transport *Transport
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		conn = NewMockConn(mockCtrl)

		var err error
		transport, err = MakeBuilder().
			WithConn(conn).
			WithMaxTransactionSize(4).
			WithRetries(2).
			Build()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should send a write transaction as one message", func() {
		conn.EXPECT().
			Transfer([]Message{{Addr: 0x50, Data: []byte{0, 1, 2}}}).
			Return(nil)

		transport.BeginTransmission(0x50)
		Expect(transport.Send([]byte{0, 1})).To(Equal(2))
		Expect(transport.Send([]byte{2})).To(Equal(1))
		Expect(transport.EndTransmission(true)).To(Equal(bus.StatusOK))
	})

	It("should truncate at the transaction size", func() {
		transport.BeginTransmission(0x50)

		Expect(transport.Send([]byte{1, 2, 3})).To(Equal(3))
		Expect(transport.Send([]byte{4, 5})).To(Equal(1))
		Expect(transport.MaxTransactionSize()).To(Equal(4))
	})

	It("should refuse data outside a transaction", func() {
		Expect(transport.Send([]byte{1})).To(Equal(0))
		Expect(transport.EndTransmission(true)).To(Equal(bus.StatusOther))
	})

	It("should send an empty probe", func() {
		conn.EXPECT().
			Transfer([]Message{{Addr: 0x51}}).
			Return(nil)

		transport.BeginTransmission(0x51)

		Expect(transport.EndTransmission(true)).To(Equal(bus.StatusOK))
	})

	DescribeTable("mapping transfer errors",
		func(err error, status bus.Status) {
			conn.EXPECT().Transfer(gomock.Any()).Return(err)

			transport.BeginTransmission(0x50)

			Expect(transport.EndTransmission(true)).To(Equal(status))
			Expect(transport.LastError()).To(Equal(err))
		},
		Entry("no acknowledge",
			fmt.Errorf("%w: nxio", ErrNoAck), bus.StatusAddrNACK),
		Entry("timeout",
			fmt.Errorf("%w: timedout", ErrTimeout), bus.StatusTimeout),
		Entry("anything else", errors.New("eio"), bus.StatusOther),
	)

	It("should retry while the adapter is busy", func() {
		gomock.InOrder(
			conn.EXPECT().Transfer(gomock.Any()).Return(ErrBusy),
			conn.EXPECT().Transfer(gomock.Any()).Return(ErrBusy),
			conn.EXPECT().Transfer(gomock.Any()).Return(nil),
		)

		transport.BeginTransmission(0x50)

		Expect(transport.EndTransmission(true)).To(Equal(bus.StatusOK))
	})

	It("should give up after the retries", func() {
		conn.EXPECT().Transfer(gomock.Any()).Return(ErrBusy).Times(3)

		transport.BeginTransmission(0x50)

		Expect(transport.EndTransmission(true)).To(Equal(bus.StatusOther))
	})

	It("should read into the receive buffer", func() {
		conn.EXPECT().Transfer(gomock.Any()).
			DoAndReturn(func(msgs []Message) error {
				Expect(msgs).To(HaveLen(1))
				Expect(msgs[0].Addr).To(Equal(bus.Addr(0x50)))
				Expect(msgs[0].Read).To(BeTrue())
				Expect(msgs[0].Data).To(HaveLen(4))
				copy(msgs[0].Data, []byte{9, 8, 7, 6})
				return nil
			})

		Expect(transport.RequestFrom(0x50, 10)).To(Equal(4))

		for _, want := range []byte{9, 8, 7, 6} {
			v, ok := transport.Receive()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(want))
		}

		_, ok := transport.Receive()
		Expect(ok).To(BeFalse())
	})

	It("should report a failed read as no data", func() {
		conn.EXPECT().Transfer(gomock.Any()).Return(ErrNoAck)

		Expect(transport.RequestFrom(0x50, 2)).To(Equal(0))

		_, ok := transport.Receive()
		Expect(ok).To(BeFalse())
	})

	It("should close the adapter", func() {
		conn.EXPECT().Close().Return(nil)

		Expect(transport.Close()).To(Succeed())
	})
})
