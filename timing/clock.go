// Package timing provides the time source used by bus devices and
// controllers.
package timing

import (
	"sync"
	"time"
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() time.Time
}

// A Clock tells the time and can block the caller for a duration.
type Clock interface {
	TimeTeller

	// Sleep blocks the caller for at least d.
	Sleep(d time.Duration)
}

// SystemClock is the wall clock of the host.
type SystemClock struct{}

// Now returns the current wall clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks the calling goroutine for d.
func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// ManualClock is a clock that only moves when told to. Sleeping on a
// ManualClock advances it instead of blocking, so timing-dependent code can
// be tested deterministically.
type ManualClock struct {
	lock sync.Mutex
	now  time.Time
}

// NewManualClock creates a ManualClock that starts at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current time of the clock.
func (c *ManualClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

// Sleep advances the clock by d.
func (c *ManualClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}

	c.lock.Lock()
	c.now = c.now.Add(d)
	c.lock.Unlock()
}
