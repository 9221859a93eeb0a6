// Package i2cdev reaches two-wire peripherals through the Linux i2c-dev
// interface (/dev/i2c-N).
package i2cdev

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/eeprom/bus"
)

// Errors reported by a Conn. Implementations wrap them around the
// underlying system error.
var (
	ErrNoAck   = errors.New("i2cdev: no acknowledge")
	ErrTimeout = errors.New("i2cdev: timeout")
	ErrBusy    = errors.New("i2cdev: bus busy")
)

// A Message is one segment of a combined transfer.
type Message struct {
	Addr bus.Addr
	Read bool
	Data []byte
}

// A Conn performs combined transfers on one adapter. Segments after the
// first start with a repeated start; the transfer ends with a stop.
type Conn interface {
	Transfer(msgs []Message) error
	Close() error
}

// Transport is a bus.Transport on top of a Conn.
//
// The kernel interface ends every transfer with a stop condition. A write
// transaction ended without a stop is therefore sent as its own transfer,
// and the read that follows is a separate transfer. Serial EEPROMs keep
// their address pointer across the stop, so random reads work unchanged.
type Transport struct {
	lock sync.Mutex

	conn    Conn
	maxSize int
	retries int

	inTransmission bool
	txAddr         bus.Addr
	txBuf          []byte
	rxBuf          []byte
	lastErr        error
}

// BeginTransmission starts queueing a write transaction.
func (t *Transport) BeginTransmission(addr bus.Addr) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.inTransmission = true
	t.txAddr = addr
	t.txBuf = t.txBuf[:0]
}

// Send queues as many bytes as a transaction can carry.
func (t *Transport) Send(data []byte) int {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.inTransmission {
		return 0
	}

	n := min(len(data), t.maxSize-len(t.txBuf))
	t.txBuf = append(t.txBuf, data[:n]...)

	return n
}

// EndTransmission transfers the queued bytes.
func (t *Transport) EndTransmission(_ bool) bus.Status {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.inTransmission {
		return bus.StatusOther
	}
	t.inTransmission = false

	msg := Message{
		Addr: t.txAddr,
		Data: append([]byte(nil), t.txBuf...),
	}

	return statusOf(t.transfer([]Message{msg}))
}

// RequestFrom reads up to n bytes in one transfer.
func (t *Transport) RequestFrom(addr bus.Addr, n int) int {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.rxBuf = t.rxBuf[:0]

	n = min(n, t.maxSize)
	if n <= 0 {
		return 0
	}

	msg := Message{Addr: addr, Read: true, Data: make([]byte, n)}
	if err := t.transfer([]Message{msg}); err != nil {
		return 0
	}

	t.rxBuf = append(t.rxBuf, msg.Data...)

	return n
}

// Receive pops the next byte obtained by RequestFrom.
func (t *Transport) Receive() (byte, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.rxBuf) == 0 {
		return 0, false
	}

	v := t.rxBuf[0]
	t.rxBuf = t.rxBuf[1:]

	return v, true
}

// MaxTransactionSize returns the largest payload of a transfer.
func (t *Transport) MaxTransactionSize() int {
	return t.maxSize
}

// LastError returns the error of the most recent failed transfer.
func (t *Transport) LastError() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.lastErr
}

// Close releases the adapter.
func (t *Transport) Close() error {
	return t.conn.Close()
}

func (t *Transport) transfer(msgs []Message) error {
	var err error

	for attempt := 0; attempt <= t.retries; attempt++ {
		err = t.conn.Transfer(msgs)
		if !errors.Is(err, ErrBusy) {
			break
		}
	}

	if err != nil {
		t.lastErr = err
	}

	return err
}

func statusOf(err error) bus.Status {
	switch {
	case err == nil:
		return bus.StatusOK
	case errors.Is(err, ErrNoAck):
		return bus.StatusAddrNACK
	case errors.Is(err, ErrTimeout):
		return bus.StatusTimeout
	default:
		return bus.StatusOther
	}
}

// Builder can build Transports.
type Builder struct {
	busNumber int
	conn      Conn
	maxSize   int
	retries   int
}

// MakeBuilder returns a Builder for /dev/i2c-1.
func MakeBuilder() Builder {
	return Builder{
		busNumber: 1,
		maxSize:   258,
		retries:   3,
	}
}

// WithBusNumber sets N in /dev/i2c-N.
func (b Builder) WithBusNumber(n int) Builder {
	b.busNumber = n
	return b
}

// WithConn makes the transport use an already opened adapter.
func (b Builder) WithConn(conn Conn) Builder {
	b.conn = conn
	return b
}

// WithMaxTransactionSize sets the largest payload of a transfer.
func (b Builder) WithMaxTransactionSize(n int) Builder {
	b.maxSize = n
	return b
}

// WithRetries sets how many times a transfer is repeated while the adapter
// is busy.
func (b Builder) WithRetries(n int) Builder {
	b.retries = n
	return b
}

// Build opens the adapter and creates the transport.
func (b Builder) Build() (*Transport, error) {
	if b.maxSize <= 0 {
		log.Panicf("max transaction size must be positive, got %d", b.maxSize)
	}

	conn := b.conn
	if conn == nil {
		var err error

		conn, err = Open(b.busNumber)
		if err != nil {
			return nil, fmt.Errorf("opening i2c bus %d: %w", b.busNumber, err)
		}
	}

	return &Transport{
		conn:    conn,
		maxSize: b.maxSize,
		retries: max(b.retries, 0),
	}, nil
}
