package eeprom

import (
	"fmt"
	"strings"
)

// A Model describes the geometry of a device type.
type Model struct {
	Name     string
	Capacity int
	PageSize int
}

// Devices of the family with two-byte internal addressing.
var (
	M24C32 = Model{Name: "M24C32", Capacity: 4096, PageSize: 32}
	M24C64 = Model{Name: "M24C64", Capacity: 8192, PageSize: 32}
	M24128 = Model{Name: "M24128", Capacity: 16384, PageSize: 64}
	M24256 = Model{Name: "M24256", Capacity: 32768, PageSize: 64}
	M24512 = Model{Name: "M24512", Capacity: 65536, PageSize: 128}
)

// Models lists the predefined device types.
var Models = []Model{M24C32, M24C64, M24128, M24256, M24512}

// LookupModel finds a predefined model by name, ignoring case.
func LookupModel(name string) (Model, bool) {
	for _, m := range Models {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}

	return Model{}, false
}

// Validate checks that the geometry can be driven with two-byte addresses.
func (m Model) Validate() error {
	if m.Capacity <= 0 || m.Capacity > 1<<16 {
		return fmt.Errorf("%w: capacity %d cannot be addressed with two bytes",
			ErrInvalidArgument, m.Capacity)
	}

	if m.PageSize <= 0 || m.Capacity%m.PageSize != 0 {
		return fmt.Errorf("%w: page size %d does not divide capacity %d",
			ErrInvalidArgument, m.PageSize, m.Capacity)
	}

	return nil
}

func (m Model) String() string {
	return fmt.Sprintf("%s (%d bytes, %d-byte pages)",
		m.Name, m.Capacity, m.PageSize)
}
