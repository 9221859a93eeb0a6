// Package simbus provides an in-memory two-wire bus and simulated EEPROM
// peripherals for running drivers without hardware.
package simbus

import (
	"log"
	"sync"

	"github.com/sarchlab/eeprom/bus"
)

// DefaultBufferSize is the transaction buffer of a Bus built by NewBus with
// a non-positive size.
const DefaultBufferSize = 128

// A Peripheral is a device that can be attached to a Bus.
type Peripheral interface {
	// Ack reports whether the peripheral acknowledges its address.
	Ack() bool

	// Receive handles the payload of a write transaction. It returns false
	// if the payload is not acknowledged.
	Receive(data []byte, stop bool) bool

	// Transmit returns n bytes for a read request.
	Transmit(n int) []byte
}

// TransactionKind tells reads and writes apart in the bus log.
type TransactionKind int

// Kinds of transactions.
const (
	TransactionWrite TransactionKind = iota
	TransactionRead
)

func (k TransactionKind) String() string {
	if k == TransactionRead {
		return "read"
	}

	return "write"
}

// A Transaction is an entry in the bus log.
type Transaction struct {
	Kind   TransactionKind
	Addr   bus.Addr
	Data   []byte
	Stop   bool
	Status bus.Status
}

// A Bus is a simulated two-wire bus. It implements bus.Transport.
type Bus struct {
	lock sync.Mutex

	bufferSize  int
	peripherals map[bus.Addr]Peripheral

	inTransmission bool
	txAddr         bus.Addr
	txBuf          []byte
	rxBuf          []byte

	logging bool
	log     []Transaction
}

// NewBus creates a bus whose transactions carry at most bufferSize bytes.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &Bus{
		bufferSize:  bufferSize,
		peripherals: make(map[bus.Addr]Peripheral),
	}
}

// Attach connects a peripheral at the given address.
func (b *Bus) Attach(addr bus.Addr, p Peripheral) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if !addr.Valid() {
		log.Panicf("address %s is not a 7-bit address", addr)
	}

	if _, ok := b.peripherals[addr]; ok {
		log.Panicf("address %s is already in use", addr)
	}

	b.peripherals[addr] = p
}

// Detach disconnects the peripheral at the given address.
func (b *Bus) Detach(addr bus.Addr) {
	b.lock.Lock()
	delete(b.peripherals, addr)
	b.lock.Unlock()
}

// EnableLog makes the bus record every transaction it completes.
func (b *Bus) EnableLog() {
	b.lock.Lock()
	b.logging = true
	b.lock.Unlock()
}

// Transactions returns the recorded transactions.
func (b *Bus) Transactions() []Transaction {
	b.lock.Lock()
	defer b.lock.Unlock()

	return append([]Transaction(nil), b.log...)
}

// ClearLog forgets the recorded transactions.
func (b *Bus) ClearLog() {
	b.lock.Lock()
	b.log = nil
	b.lock.Unlock()
}

func (b *Bus) record(t Transaction) {
	if b.logging {
		b.log = append(b.log, t)
	}
}

// BeginTransmission starts queueing a write transaction.
func (b *Bus) BeginTransmission(addr bus.Addr) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inTransmission = true
	b.txAddr = addr
	b.txBuf = b.txBuf[:0]
}

// Send queues as many bytes as the transaction buffer can take.
func (b *Bus) Send(data []byte) int {
	b.lock.Lock()
	defer b.lock.Unlock()

	if !b.inTransmission {
		return 0
	}

	n := min(len(data), b.bufferSize-len(b.txBuf))
	b.txBuf = append(b.txBuf, data[:n]...)

	return n
}

// EndTransmission delivers the queued transaction to the addressed
// peripheral.
func (b *Bus) EndTransmission(stop bool) bus.Status {
	b.lock.Lock()
	defer b.lock.Unlock()

	if !b.inTransmission {
		return bus.StatusOther
	}
	b.inTransmission = false

	t := Transaction{
		Kind: TransactionWrite,
		Addr: b.txAddr,
		Data: append([]byte(nil), b.txBuf...),
		Stop: stop,
	}

	p, ok := b.peripherals[b.txAddr]
	switch {
	case !ok || !p.Ack():
		t.Status = bus.StatusAddrNACK
	case !p.Receive(t.Data, stop):
		t.Status = bus.StatusDataNACK
	default:
		t.Status = bus.StatusOK
	}

	b.record(t)

	return t.Status
}

// RequestFrom reads up to n bytes from the addressed peripheral. Requests
// larger than the transaction buffer are truncated.
func (b *Bus) RequestFrom(addr bus.Addr, n int) int {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.rxBuf = b.rxBuf[:0]
	n = min(n, b.bufferSize)
	if n <= 0 {
		return 0
	}

	t := Transaction{Kind: TransactionRead, Addr: addr, Stop: true}

	p, ok := b.peripherals[addr]
	if !ok || !p.Ack() {
		t.Status = bus.StatusAddrNACK
		b.record(t)
		return 0
	}

	b.rxBuf = append(b.rxBuf, p.Transmit(n)...)
	t.Data = append([]byte(nil), b.rxBuf...)
	b.record(t)

	return len(b.rxBuf)
}

// Receive pops the next byte obtained by RequestFrom.
func (b *Bus) Receive() (byte, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if len(b.rxBuf) == 0 {
		return 0, false
	}

	v := b.rxBuf[0]
	b.rxBuf = b.rxBuf[1:]

	return v, true
}

// MaxTransactionSize returns the size of the transaction buffer.
func (b *Bus) MaxTransactionSize() int {
	return b.bufferSize
}
