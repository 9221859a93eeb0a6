package eeprom

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/sarchlab/eeprom/bus"
	"github.com/sarchlab/eeprom/id"
	"github.com/sarchlab/eeprom/timing"
	"github.com/sarchlab/eeprom/tracing"
)

// Builder can build EEPROM controllers.
type Builder struct {
	transport          bus.Transport
	address            bus.Addr
	model              Model
	clock              timing.Clock
	settleWindow       time.Duration
	pollInterval       time.Duration
	maxTransactionSize int
	tracer             tracing.Tracer
	idGenerator        id.IDGenerator
	logger             logr.Logger
}

// MakeBuilder returns a Builder for an M24C64 at address 0x50.
func MakeBuilder() Builder {
	return Builder{
		address:            0x50,
		model:              M24C64,
		clock:              timing.SystemClock{},
		settleWindow:       5 * time.Millisecond,
		pollInterval:       100 * time.Microsecond,
		maxTransactionSize: -1,
		logger:             logr.Discard(),
	}
}

// WithTransport sets the bus the device is attached to. The transport is
// borrowed and must outlive the controller.
func (b Builder) WithTransport(t bus.Transport) Builder {
	b.transport = t
	return b
}

// WithAddress sets the 7-bit bus address of the device.
func (b Builder) WithAddress(addr bus.Addr) Builder {
	b.address = addr
	return b
}

// WithModel sets the geometry of the device.
func (b Builder) WithModel(m Model) Builder {
	b.model = m
	return b
}

// WithClock sets the time source used for write-cycle timing.
func (b Builder) WithClock(clock timing.Clock) Builder {
	b.clock = clock
	return b
}

// WithSettleWindow sets how long after a write the device may still be
// busy with its write cycle.
func (b Builder) WithSettleWindow(d time.Duration) Builder {
	b.settleWindow = d
	return b
}

// WithPollInterval sets the pause between readiness probes while waiting
// for a write cycle.
func (b Builder) WithPollInterval(d time.Duration) Builder {
	b.pollInterval = d
	return b
}

// WithMaxTransactionSize overrides the payload limit reported by the
// transport. Zero disables page writes.
func (b Builder) WithMaxTransactionSize(n int) Builder {
	b.maxTransactionSize = n
	return b
}

// WithTracer sets the tracer that receives every bus transaction.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracer = t
	return b
}

// WithIDGenerator sets the generator of trace task IDs.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGenerator = g
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l logr.Logger) Builder {
	b.logger = l
	return b
}

func (b Builder) parametersMustBeValid() error {
	if b.transport == nil {
		return fmt.Errorf("%w: no transport", ErrInvalidArgument)
	}

	if b.address&0xf8 != 0x50 {
		return fmt.Errorf("%w: bus address %s outside 0x50-0x57",
			ErrInvalidArgument, b.address)
	}

	if b.clock == nil {
		return fmt.Errorf("%w: no clock", ErrInvalidArgument)
	}

	return b.model.Validate()
}

// Build creates a controller.
func (b Builder) Build(name string) (*Controller, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	c := &Controller{
		name:         name,
		transport:    b.transport,
		address:      b.address,
		model:        b.model,
		clock:        b.clock,
		settleWindow: b.settleWindow,
		pollInterval: b.pollInterval,
		maxTxSize:    b.maxTransactionSize,
		tracer:       b.tracer,
		idGenerator:  b.idGenerator,
		log:          b.logger.WithName(name),
		buffer:       make([]byte, 0, b.model.PageSize),
	}

	if c.maxTxSize < 0 {
		c.maxTxSize = b.transport.MaxTransactionSize()
	}

	if c.tracer != nil && c.idGenerator == nil {
		c.idGenerator = id.NewSequentialIDGenerator()
	}

	return c, nil
}
