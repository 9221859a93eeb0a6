//go:build !linux

package i2cdev

import "errors"

// Open is only available on Linux.
func Open(busNumber int) (Conn, error) {
	return nil, errors.New("i2c-dev is only supported on linux")
}
