package eeprom

// NoData is returned by StreamRead and StreamPeek when no byte can be
// delivered, whatever the reason.
const NoData = -1

// InvalidPosition is returned by SeekRead and SeekWrite for positions
// outside the device.
const InvalidPosition = -1

// A ByteSource delivers bytes one at a time from a read cursor.
type ByteSource interface {
	// Available returns how many bytes lie between the read cursor and the
	// end of the source.
	Available() int

	// StreamRead returns the byte at the read cursor and advances the
	// cursor, or returns NoData.
	StreamRead() int

	// StreamPeek returns the byte at the read cursor without advancing it,
	// or returns NoData.
	StreamPeek() int
}

// A ByteSink accepts bytes at a write cursor. It reports only how many bytes
// were taken.
type ByteSink interface {
	StreamWriteByte(b byte) int
	StreamWrite(p []byte) int
}

var (
	_ ByteSource = (*Controller)(nil)
	_ ByteSink   = (*Controller)(nil)
)

// Available returns the number of bytes between the read cursor and the end
// of the device.
func (c *Controller) Available() int {
	if c.readCursor < 0 || c.readCursor > c.model.Capacity {
		return 0
	}

	return c.model.Capacity - c.readCursor
}

func (c *Controller) readAtCursor() (value, n int) {
	var b [1]byte

	n, err := c.Read(c.readCursor, b[:])
	if err != nil || n <= 0 {
		return NoData, 0
	}

	return int(b[0]), n
}

// StreamRead reads the byte at the read cursor and moves the cursor past it.
// Failures of any kind yield NoData.
func (c *Controller) StreamRead() int {
	value, n := c.readAtCursor()
	c.readCursor += n

	return value
}

// StreamPeek reads the byte at the read cursor. The cursor does not move.
func (c *Controller) StreamPeek() int {
	value, _ := c.readAtCursor()

	return value
}

// StreamWriteByte writes one byte at the write cursor and returns 1, or 0 if
// the byte could not be written.
func (c *Controller) StreamWriteByte(b byte) int {
	return c.StreamWrite([]byte{b})
}

// StreamWrite writes p at the write cursor and moves the cursor by the
// number of bytes written. Errors are reported as a zero count.
func (c *Controller) StreamWrite(p []byte) int {
	n, err := c.Write(c.writeCursor, p)
	if err != nil {
		return 0
	}

	c.writeCursor += n

	return n
}

// SeekRead moves the read cursor. It returns pos, or InvalidPosition
// without moving the cursor if pos is outside the device.
func (c *Controller) SeekRead(pos int) int {
	if pos < 0 || pos >= c.model.Capacity {
		return InvalidPosition
	}

	c.readCursor = pos

	return pos
}

// SeekWrite moves the write cursor. It returns pos, or InvalidPosition
// without moving the cursor if pos is outside the device.
func (c *Controller) SeekWrite(pos int) int {
	if pos < 0 || pos >= c.model.Capacity {
		return InvalidPosition
	}

	c.writeCursor = pos

	return pos
}

// ReadPosition returns the read cursor.
func (c *Controller) ReadPosition() int {
	return c.readCursor
}

// WritePosition returns the write cursor.
func (c *Controller) WritePosition() int {
	return c.writeCursor
}
