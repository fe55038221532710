package testutil

import (
	"fmt"
	"sync"
)

// SequentialRunIDs generates "run-1", "run-2", ... for tests that start
// several repair runs against one store.
//
// Unlike engine.FixedGenerator it never runs out, and Reset starts the
// sequence over.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialRunIDs struct {
	mu   sync.Mutex
	next int
}

// NewSequentialRunIDs creates a generator whose first id is "run-1".
func NewSequentialRunIDs() *SequentialRunIDs {
	return &SequentialRunIDs{}
}

// Generate returns the next run id.
//
// Implements engine.RunIDGenerator.
func (g *SequentialRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("run-%d", g.next)
}

// Reset makes the next Generate return "run-1" again.
func (g *SequentialRunIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = 0
}
