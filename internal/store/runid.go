package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RunIDGenerator produces ledger row IDs.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
// The ID is only an identity; ordering always uses seq.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequentialGenerator returns predictable IDs for tests ("run-1", "run-2", ...).
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu   sync.Mutex
	next int
}

// Generate returns the next ID in the sequence.
func (g *SequentialGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("run-%d", g.next)
}

// Reset restarts the sequence so a test can replay identical IDs.
func (g *SequentialGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = 0
}
