package simbus

import (
	"errors"
	"io"
)

// ErasedValue is the content of a cell that has never been programmed.
const ErasedValue = 0xff

// A Storage keeps the cell array of a simulated memory device.
//
// The storage is managed in units of one page. Units that are never written
// are not allocated and read back as erased cells.
type Storage struct {
	unitSize int
	capacity int
	data     map[int][]byte
}

// NewStorage creates a storage with the given capacity and unit size. The
// unit size must divide the capacity.
func NewStorage(capacity, unitSize int) *Storage {
	if unitSize <= 0 || capacity <= 0 || capacity%unitSize != 0 {
		panic("storage unit size must divide the capacity")
	}

	return &Storage{
		unitSize: unitSize,
		capacity: capacity,
		data:     make(map[int][]byte),
	}
}

// Capacity returns the number of bytes in the storage.
func (s *Storage) Capacity() int {
	return s.capacity
}

func (s *Storage) parseAddress(addr int) (baseAddr, inUnitAddr int) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

func (s *Storage) mustBeInRange(address, length int) error {
	if address < 0 || length < 0 || address+length > s.capacity {
		return errors.New("accessing address beyond the storage capacity")
	}

	return nil
}

func (s *Storage) getOrCreateUnit(baseAddr int) []byte {
	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		for i := range unit {
			unit[i] = ErasedValue
		}
		s.data[baseAddr] = unit
	}

	return unit
}

// Read returns length bytes starting at address.
func (s *Storage) Read(address, length int) ([]byte, error) {
	if err := s.mustBeInRange(address, length); err != nil {
		return nil, err
	}

	res := make([]byte, length)
	for done := 0; done < length; {
		baseAddr, inUnitAddr := s.parseAddress(address + done)
		n := min(length-done, s.unitSize-inUnitAddr)

		unit, ok := s.data[baseAddr]
		if ok {
			copy(res[done:done+n], unit[inUnitAddr:inUnitAddr+n])
		} else {
			for i := done; i < done+n; i++ {
				res[i] = ErasedValue
			}
		}

		done += n
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address int, data []byte) error {
	if err := s.mustBeInRange(address, len(data)); err != nil {
		return err
	}

	for done := 0; done < len(data); {
		baseAddr, inUnitAddr := s.parseAddress(address + done)
		n := min(len(data)-done, s.unitSize-inUnitAddr)

		unit := s.getOrCreateUnit(baseAddr)
		copy(unit[inUnitAddr:inUnitAddr+n], data[done:done+n])

		done += n
	}

	return nil
}

// Load fills the storage from r, starting at address 0. A short image leaves
// the remaining cells unchanged.
func (s *Storage) Load(r io.Reader) error {
	buf := make([]byte, s.capacity)

	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}

	return s.Write(0, buf[:n])
}

// Save writes the whole cell array to w.
func (s *Storage) Save(w io.Writer) error {
	buf, err := s.Read(0, s.capacity)
	if err != nil {
		return err
	}

	_, err = w.Write(buf)

	return err
}
