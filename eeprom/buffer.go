package eeprom

import "github.com/sarchlab/eeprom/tracing"

// BufferedWrite stores data from address on, collecting page-aligned runs
// in the write buffer so that they reach the device as page bursts.
//
// Bytes that start a run on a page boundary, and every byte contiguous with
// the run, are held back until the run fills a page or Flush is called.
// Bytes that cannot join a run are written immediately. An access that is
// not contiguous with the pending run flushes it first.
//
// The returned count includes bytes held in the buffer. On error, processing
// stops; a byte left in the buffer by a failed flush is included in the
// count and is written by a later successful Flush.
func (c *Controller) BufferedWrite(address int, data []byte) (int, error) {
	length, err := c.clampAccess(address, len(data))
	if err != nil {
		return 0, err
	}

	page := c.model.PageSize

	if address != c.bufferOrigin+len(c.buffer) || len(c.buffer) >= page {
		if _, err := c.Flush(); err != nil {
			return 0, err
		}
	}

	for i := 0; i < length; i++ {
		target := address + i

		switch {
		case len(c.buffer) > 0:
			c.buffer = append(c.buffer, data[i])

			if len(c.buffer) >= page {
				if _, err := c.Flush(); err != nil {
					return i + 1, err
				}
			}
		case target%page == 0:
			c.bufferOrigin = target
			c.buffer = append(c.buffer[:0], data[i])
		default:
			if _, err := c.Write(target, data[i:i+1]); err != nil {
				return i, err
			}
		}
	}

	return length, nil
}

// Flush writes the pending buffered run to the device. It returns the
// number of bytes written, which is zero if nothing is pending. If the write
// fails the run stays in the buffer so that Flush can be retried.
//
// Buffered bytes are not written automatically when the controller is
// dropped.
func (c *Controller) Flush() (int, error) {
	if len(c.buffer) == 0 {
		return 0, nil
	}

	task := c.startTask(tracing.KindBuffer, tracing.WhatFlush,
		c.bufferOrigin, len(c.buffer))

	n, err := c.Write(c.bufferOrigin, c.buffer)
	if err != nil {
		c.log.Error(err, "flush failed",
			"origin", c.bufferOrigin, "length", len(c.buffer))
		c.endTask(task, 0, err)

		return 0, err
	}

	c.log.V(1).Info("flushed", "origin", c.bufferOrigin, "length", n)
	c.endTask(task, n, nil)
	c.buffer = c.buffer[:0]

	return n, nil
}

// Buffered returns the origin and length of the pending run. The length is
// zero if nothing is pending.
func (c *Controller) Buffered() (origin, length int) {
	if len(c.buffer) == 0 {
		return 0, 0
	}

	return c.bufferOrigin, len(c.buffer)
}
