package i2cdev

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	i2cFuncs = 0x0705
	i2cRdwr  = 0x0707

	i2cFuncI2C = 0x00000001
	i2cMRd     = 0x0001

	i2cRdwrMaxMsgs = 42
)

type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   unsafe.Pointer
}

type i2cRdwrIoctlData struct {
	msgs  unsafe.Pointer
	nmsgs uint32
}

type devfsConn struct {
	fd int
}

// Open opens /dev/i2c-N. The adapter must support plain I2C transfers.
// You need to load the "i2c-dev" kernel module to use it.
func Open(busNumber int) (Conn, error) {
	name := fmt.Sprintf("/dev/i2c-%d", busNumber)

	fd, err := unix.Open(name, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	c := &devfsConn{fd: fd}

	var funcs uint64
	if err := c.ioctl(i2cFuncs, uintptr(unsafe.Pointer(&funcs))); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}

	if funcs&i2cFuncI2C == 0 {
		c.Close()
		return nil, fmt.Errorf("%s does not support combined transfers", name)
	}

	return c, nil
}

func (c *devfsConn) Transfer(msgs []Message) error {
	if len(msgs) == 0 || len(msgs) > i2cRdwrMaxMsgs {
		return fmt.Errorf("cannot transfer %d messages", len(msgs))
	}

	raw := make([]i2cMsg, len(msgs))
	for i, m := range msgs {
		raw[i] = i2cMsg{
			addr: uint16(m.Addr),
			len:  uint16(len(m.Data)),
		}

		if m.Read {
			raw[i].flags = i2cMRd
		}

		if len(m.Data) > 0 {
			raw[i].buf = unsafe.Pointer(&m.Data[0])
		}
	}

	data := i2cRdwrIoctlData{
		msgs:  unsafe.Pointer(&raw[0]),
		nmsgs: uint32(len(raw)),
	}

	err := c.ioctl(i2cRdwr, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(raw)
	runtime.KeepAlive(msgs)

	return classify(err)
}

func (c *devfsConn) Close() error {
	return unix.Close(c.fd)
}

func (c *devfsConn) ioctl(req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(c.fd), req, arg)
	if errno != 0 {
		return errno
	}

	return nil
}

func classify(err error) error {
	switch err {
	case nil:
		return nil
	case unix.ENXIO, unix.EREMOTEIO:
		return fmt.Errorf("%w: %w", ErrNoAck, err)
	case unix.ETIMEDOUT:
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case unix.EAGAIN, unix.EINTR:
		return fmt.Errorf("%w: %w", ErrBusy, err)
	default:
		return err
	}
}
