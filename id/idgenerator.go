// Package id generates identifiers for traced bus transactions.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewSequentialIDGenerator returns a generator that numbers IDs from 1. The
// IDs are deterministic, which makes traces comparable across runs.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewGlobalIDGenerator returns a generator whose IDs are unique across
// processes and hosts, so that traces from different runs can share one
// database.
func NewGlobalIDGenerator() IDGenerator {
	return globalIDGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	id := strconv.FormatUint(idNumber, 10)

	return id
}

type globalIDGenerator struct{}

func (globalIDGenerator) Generate() string {
	return xid.New().String()
}
