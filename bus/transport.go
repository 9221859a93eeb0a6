// Package bus defines the two-wire (I2C) transport that device drivers talk
// through.
package bus

import "fmt"

// Addr is a right-aligned 7-bit peripheral address.
type Addr uint8

// Valid reports whether the address fits in 7 bits.
func (a Addr) Valid() bool {
	return a <= 0x7f
}

func (a Addr) String() string {
	return fmt.Sprintf("0x%02x", uint8(a))
}

// Status is the completion code of a write transaction.
type Status int

// Completion codes, numbered like the common two-wire host libraries.
const (
	StatusOK Status = iota
	StatusDataTooLong
	StatusAddrNACK
	StatusDataNACK
	StatusOther
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDataTooLong:
		return "data too long"
	case StatusAddrNACK:
		return "address not acknowledged"
	case StatusDataNACK:
		return "data not acknowledged"
	case StatusOther:
		return "bus error"
	case StatusTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// A Transport is a host-side two-wire bus controller.
//
// A write transaction is started with BeginTransmission, filled with Send and
// completed with EndTransmission. Ending a transaction without a stop
// condition keeps the bus so that a following RequestFrom is issued as a
// repeated start. Bytes obtained by RequestFrom are retrieved one by one with
// Receive.
type Transport interface {
	// BeginTransmission starts queueing a write transaction to addr.
	BeginTransmission(addr Addr)

	// Send queues data to the pending transaction and returns how many bytes
	// were accepted.
	Send(data []byte) int

	// EndTransmission transmits the pending transaction.
	EndTransmission(stop bool) Status

	// RequestFrom reads up to n bytes from addr and returns how many bytes
	// were obtained.
	RequestFrom(addr Addr, n int) int

	// Receive returns the next byte obtained by the last RequestFrom. The
	// boolean is false if no byte is left.
	Receive() (byte, bool)

	// MaxTransactionSize returns the largest payload a single transaction
	// can carry, or 0 if it is unknown.
	MaxTransactionSize() int
}
