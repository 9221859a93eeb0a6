// Package eeprom drives serial EEPROMs with two-byte internal addressing
// over a two-wire bus.
//
// A Controller offers addressed reads and writes, a write-coalescing buffer
// that turns runs of small sequential writes into page bursts, and a
// sequential stream with independent read and write cursors.
//
// A Controller is not safe for concurrent use.
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

// A Controller gives access to one EEPROM device.
type Controller struct {
	name      string
	transport bus.Transport
	address   bus.Addr
	model     Model

	clock        timing.Clock
	settleWindow time.Duration
	pollInterval time.Duration
	maxTxSize    int

	tracer      tracing.Tracer
	idGenerator id.IDGenerator
	log         logr.Logger

	lastWrite time.Time

	readCursor  int
	writeCursor int

	buffer       []byte
	bufferOrigin int
}

// Name returns the name of the controller.
func (c *Controller) Name() string {
	return c.name
}

// Model returns the geometry of the device.
func (c *Controller) Model() Model {
	return c.model
}

// Capacity returns the number of addressable bytes.
func (c *Controller) Capacity() int {
	return c.model.Capacity
}

// Detect reports whether the device acknowledges its bus address.
func (c *Controller) Detect() bool {
	if c.transport == nil {
		return false
	}

	c.transport.BeginTransmission(c.address)

	return c.transport.EndTransmission(true) == bus.StatusOK
}

// clampAccess validates an access and returns the number of bytes that fit
// before the end of the device.
func (c *Controller) clampAccess(address, length int) (int, error) {
	if c.transport == nil {
		return 0, fmt.Errorf("%w: controller has no transport", ErrInvalidArgument)
	}

	if address < 0 || address >= c.model.Capacity {
		return 0, fmt.Errorf("%w: address %d outside [0, %d)",
			ErrInvalidArgument, address, c.model.Capacity)
	}

	return min(length, c.model.Capacity-address), nil
}

// waitForWriteCycle blocks until the device acknowledges its address or
// the settle window after the last write has passed, whichever is first.
func (c *Controller) waitForWriteCycle() {
	if c.lastWrite.IsZero() {
		return
	}

	deadline := c.lastWrite.Add(c.settleWindow)
	if c.clock.Now().After(deadline) {
		return
	}

	task := c.startTask(tracing.KindWait, tracing.WhatSettle, 0, 0)

	for !c.clock.Now().After(deadline) {
		if c.Detect() {
			break
		}

		c.clock.Sleep(c.pollInterval)
	}

	c.endTask(task, 0, nil)
}

// Read fills data with the bytes stored from address on. Reads that would
// run past the end of the device are shortened. A smaller count with a nil
// error means the device stopped delivering data.
func (c *Controller) Read(address int, data []byte) (int, error) {
	length, err := c.clampAccess(address, len(data))
	if err != nil {
		return 0, err
	}

	c.waitForWriteCycle()

	for done := 0; done < length; {
		n, err := c.readTransaction(address+done, data[done:length])
		if err != nil {
			return 0, err
		}

		if n <= 0 {
			return done, nil
		}

		done += n
	}

	return length, nil
}

func (c *Controller) readTransaction(address int, dst []byte) (int, error) {
	task := c.startTask(tracing.KindTransaction, tracing.WhatRead,
		address, len(dst))

	c.transport.BeginTransmission(c.address)
	c.transport.Send(internalAddress(address))

	status := c.transport.EndTransmission(false)
	if status != bus.StatusOK {
		err := c.ioError(address, status)
		c.endTask(task, 0, err)

		return 0, err
	}

	want := len(dst)
	if c.maxTxSize > 0 {
		want = min(want, c.maxTxSize)
	}

	n := min(c.transport.RequestFrom(c.address, want), want)
	for i := 0; i < n; i++ {
		v, ok := c.transport.Receive()
		if !ok {
			n = i
			break
		}

		dst[i] = v
	}

	c.endTask(task, max(n, 0), nil)

	return n, nil
}

// Write stores data from address on. Writes that would run past the end of
// the device are shortened. Page-aligned runs of at least one page are
// written as page bursts when the transport can carry them; everything else
// is written byte by byte. On failure nothing is reported as written.
func (c *Controller) Write(address int, data []byte) (int, error) {
	length, err := c.clampAccess(address, len(data))
	if err != nil {
		return 0, err
	}

	for done := 0; done < length; {
		c.waitForWriteCycle()

		chunk := data[done : done+1]
		if c.canPageWrite(address+done, length-done) {
			chunk = data[done : done+c.model.PageSize]
		}

		n, err := c.writeTransaction(address+done, chunk)
		if err != nil {
			return 0, err
		}

		done += n
	}

	return length, nil
}

func (c *Controller) canPageWrite(address, remaining int) bool {
	page := c.model.PageSize

	return address%page == 0 &&
		remaining >= page &&
		c.maxTxSize >= page+2
}

func (c *Controller) writeTransaction(address int, chunk []byte) (int, error) {
	what := tracing.WhatByteWrite
	if len(chunk) > 1 {
		what = tracing.WhatPageWrite
	}

	task := c.startTask(tracing.KindTransaction, what, address, len(chunk))

	c.transport.BeginTransmission(c.address)
	c.transport.Send(internalAddress(address))
	n := c.transport.Send(chunk)

	status := c.transport.EndTransmission(true)
	if status != bus.StatusOK {
		err := c.ioError(address, status)
		c.endTask(task, 0, err)

		return 0, err
	}

	if n <= 0 {
		err := fmt.Errorf("%w: transport accepted no data for 0x%04x",
			ErrIO, address)
		c.endTask(task, 0, err)

		return 0, err
	}

	c.lastWrite = c.clock.Now()
	c.endTask(task, n, nil)

	return n, nil
}

func (c *Controller) ioError(address int, status bus.Status) error {
	return fmt.Errorf("%w: device %s, address 0x%04x: %s",
		ErrIO, c.address, address, status)
}

func internalAddress(address int) []byte {
	return []byte{byte(address >> 8), byte(address)}
}

func (c *Controller) startTask(kind, what string, address, size int) tracing.Task {
	if c.tracer == nil {
		return tracing.Task{}
	}

	task := tracing.Task{
		ID:        c.idGenerator.Generate(),
		Kind:      kind,
		What:      what,
		Where:     c.name,
		Address:   address,
		ByteSize:  size,
		StartTime: c.clock.Now(),
	}
	c.tracer.StartTask(task)

	return task
}

func (c *Controller) endTask(task tracing.Task, size int, err error) {
	if c.tracer == nil {
		return
	}

	task.EndTime = c.clock.Now()
	task.ByteSize = size
	if err != nil {
		task.Error = err.Error()
	}

	c.tracer.EndTask(task)
}
