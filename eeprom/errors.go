package eeprom

import "errors"

var (
	// ErrInvalidArgument is returned when the controller is not set up or an
	// address is outside the device.
	ErrInvalidArgument = errors.New("eeprom: invalid argument")

	// ErrIO is returned when a bus transaction does not complete.
	ErrIO = errors.New("eeprom: i/o failure")
)
