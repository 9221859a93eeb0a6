package eeprom

import (
	"fmt"
	"io"
)

var (
	_ io.ReaderAt = (*Controller)(nil)
	_ io.WriterAt = (*Controller)(nil)
)

// Size returns the capacity of the device, for use with io.NewSectionReader.
func (c *Controller) Size() int64 {
	return int64(c.model.Capacity)
}

// ReadAt implements io.ReaderAt. Reads that end at the device boundary or
// stop early return io.EOF.
func (c *Controller) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, off)
	}

	if off >= c.Size() {
		return 0, io.EOF
	}

	n, err := c.Read(int(off), p)
	if err != nil {
		return n, err
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// WriteAt implements io.WriterAt. Writes cut short by the device boundary
// return io.ErrShortWrite.
func (c *Controller) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, off)
	}

	if off >= c.Size() {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.ErrShortWrite
	}

	n, err := c.Write(int(off), p)
	if err != nil {
		return n, err
	}

	if n < len(p) {
		return n, io.ErrShortWrite
	}

	return n, nil
}
