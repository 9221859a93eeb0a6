package simbus

import (
	"log"
	"time"

	"github.com/sarchlab/eeprom/timing"
)

// Builder can build simulated EEPROM devices.
type Builder struct {
	capacity   int
	pageSize   int
	writeCycle time.Duration
	clock      timing.TimeTeller
	storage    *Storage
}

// MakeBuilder returns a Builder for a 64 Kbit device with 32-byte pages and
// a 5 ms write cycle.
func MakeBuilder() Builder {
	return Builder{
		capacity:   8192,
		pageSize:   32,
		writeCycle: 5 * time.Millisecond,
		clock:      timing.SystemClock{},
	}
}

// WithCapacity sets the number of bytes in the device.
func (b Builder) WithCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithPageSize sets the size of a write page.
func (b Builder) WithPageSize(pageSize int) Builder {
	b.pageSize = pageSize
	return b
}

// WithWriteCycle sets how long the device stays busy after programming.
func (b Builder) WithWriteCycle(d time.Duration) Builder {
	b.writeCycle = d
	return b
}

// WithClock sets the time source of the device.
func (b Builder) WithClock(clock timing.TimeTeller) Builder {
	b.clock = clock
	return b
}

// WithStorage lets the device use an existing storage.
func (b Builder) WithStorage(storage *Storage) Builder {
	b.storage = storage
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.capacity <= 0 || b.capacity > 1<<16 {
		log.Panicf("capacity %d cannot be addressed with two bytes", b.capacity)
	}

	if b.pageSize <= 0 || b.capacity%b.pageSize != 0 {
		log.Panicf("page size %d must divide capacity %d",
			b.pageSize, b.capacity)
	}

	if b.storage != nil && b.storage.Capacity() != b.capacity {
		log.Panicf("storage capacity %d does not match device capacity %d",
			b.storage.Capacity(), b.capacity)
	}
}

// Build creates a new device.
func (b Builder) Build(name string) *Device {
	b.parametersMustBeValid()

	d := &Device{
		name:       name,
		clock:      b.clock,
		storage:    b.storage,
		pageSize:   b.pageSize,
		writeCycle: b.writeCycle,
	}

	if d.storage == nil {
		d.storage = NewStorage(b.capacity, b.pageSize)
	}

	return d
}
