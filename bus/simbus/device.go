package simbus

import (
	"io"
	"sync"
	"time"

	"github.com/sarchlab/eeprom/timing"
)

// DeviceStats counts what a simulated device has been asked to do.
type DeviceStats struct {
	ByteWrites   uint64 `json:"byte_writes"`
	PageWrites   uint64 `json:"page_writes"`
	ReadRequests uint64 `json:"read_requests"`
	BytesRead    uint64 `json:"bytes_read"`
	NACKs        uint64 `json:"nacks"`
}

// A Device is a simulated serial EEPROM with two-byte internal addressing.
//
// The first two bytes of a write transaction load the internal address
// pointer. Data bytes that follow are programmed when the transaction ends
// with a stop condition and roll over inside the addressed page. While the
// write cycle runs the device does not acknowledge its address. Reads stream
// from the address pointer and roll over at the end of the memory.
type Device struct {
	lock sync.Mutex

	name       string
	clock      timing.TimeTeller
	storage    *Storage
	pageSize   int
	writeCycle time.Duration

	pointer   int
	busyUntil time.Time
	stats     DeviceStats
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Capacity returns the number of bytes in the device.
func (d *Device) Capacity() int {
	return d.storage.Capacity()
}

// PageSize returns the size of a write page.
func (d *Device) PageSize() int {
	return d.pageSize
}

// Busy reports whether an internal write cycle is running.
func (d *Device) Busy() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.busy()
}

func (d *Device) busy() bool {
	return d.clock.Now().Before(d.busyUntil)
}

// Ack acknowledges the device address unless a write cycle is running.
func (d *Device) Ack() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.busy() {
		d.stats.NACKs++
		return false
	}

	return true
}

// Receive handles the payload of a write transaction.
func (d *Device) Receive(data []byte, stop bool) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if len(data) < 2 {
		// Address probe or incomplete address, nothing changes.
		return true
	}

	d.pointer = (int(data[0])<<8 | int(data[1])) % d.storage.Capacity()

	payload := data[2:]
	if len(payload) == 0 || !stop {
		return true
	}

	d.program(payload)

	return true
}

func (d *Device) program(payload []byte) {
	pageBase := d.pointer - d.pointer%d.pageSize
	offset := d.pointer - pageBase

	for _, b := range payload {
		err := d.storage.Write(pageBase+offset, []byte{b})
		if err != nil {
			panic(err)
		}

		offset = (offset + 1) % d.pageSize
	}

	d.pointer = pageBase + offset
	d.busyUntil = d.clock.Now().Add(d.writeCycle)

	if len(payload) == 1 {
		d.stats.ByteWrites++
	} else {
		d.stats.PageWrites++
	}
}

// Transmit returns n bytes starting from the address pointer.
func (d *Device) Transmit(n int) []byte {
	d.lock.Lock()
	defer d.lock.Unlock()

	capacity := d.storage.Capacity()
	out := make([]byte, 0, n)

	for len(out) < n {
		chunk := min(n-len(out), capacity-d.pointer)

		data, err := d.storage.Read(d.pointer, chunk)
		if err != nil {
			panic(err)
		}

		out = append(out, data...)
		d.pointer = (d.pointer + chunk) % capacity
	}

	d.stats.ReadRequests++
	d.stats.BytesRead += uint64(n)

	return out
}

// Contents returns the stored bytes without going through the bus.
func (d *Device) Contents(address, length int) []byte {
	d.lock.Lock()
	defer d.lock.Unlock()

	data, err := d.storage.Read(address, length)
	if err != nil {
		panic(err)
	}

	return data
}

// Stats returns a copy of the device counters.
func (d *Device) Stats() DeviceStats {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.stats
}

// ResetStats clears the device counters.
func (d *Device) ResetStats() {
	d.lock.Lock()
	d.stats = DeviceStats{}
	d.lock.Unlock()
}

// LoadImage programs the device from an image without write cycles.
func (d *Device) LoadImage(r io.Reader) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.storage.Load(r)
}

// SaveImage writes the whole cell array to w.
func (d *Device) SaveImage(w io.Writer) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.storage.Save(w)
}
