package eeprom

import "time"

// Status is a snapshot of the controller state.
type Status struct {
	Name               string `json:"name"`
	BusAddress         string `json:"bus_address"`
	Model              string `json:"model"`
	Capacity           int    `json:"capacity"`
	PageSize           int    `json:"page_size"`
	MaxTransactionSize int    `json:"max_transaction_size"`
	PageWriteEnabled   bool   `json:"page_write_enabled"`
	ReadCursor         int    `json:"read_cursor"`
	WriteCursor        int    `json:"write_cursor"`
	BufferOrigin       int    `json:"buffer_origin"`
	BufferLength       int    `json:"buffer_length"`
	LastWrite          string `json:"last_write,omitempty"`
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	origin, length := c.Buffered()

	s := Status{
		Name:               c.name,
		BusAddress:         c.address.String(),
		Model:              c.model.Name,
		Capacity:           c.model.Capacity,
		PageSize:           c.model.PageSize,
		MaxTransactionSize: c.maxTxSize,
		PageWriteEnabled:   c.maxTxSize >= c.model.PageSize+2,
		ReadCursor:         c.readCursor,
		WriteCursor:        c.writeCursor,
		BufferOrigin:       origin,
		BufferLength:       length,
	}

	if !c.lastWrite.IsZero() {
		s.LastWrite = c.lastWrite.Format(time.RFC3339Nano)
	}

	return s
}
