package testutil

import (
	"fmt"
	"sync"
)

// SequentialTagGenerator hands out owner tags "<prefix>-1", "<prefix>-2", ...
//
// Two runs of the same scenario with fresh generators produce identical
// tags, which keeps golden traces stable. Reset rewinds the sequence for
// test reuse.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialTagGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialTagGenerator creates a generator. An empty prefix defaults
// to "owner".
func NewSequentialTagGenerator(prefix string) *SequentialTagGenerator {
	if prefix == "" {
		prefix = "owner"
	}
	return &SequentialTagGenerator{prefix: prefix}
}

// Generate returns the next tag.
//
// Implements directive.TagGenerator.
func (g *SequentialTagGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Issued returns how many tags have been generated since the last Reset.
func (g *SequentialTagGenerator) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset rewinds the sequence; the next tag is "<prefix>-1" again.
func (g *SequentialTagGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
