package reactive

import (
	"fmt"
	"sync/atomic"
)

// Clock is a monotonic sequence used to name records.
//
// Safe for concurrent use, although records are normally created from a
// single goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// ScopeName returns a fresh record name of the form __scope_<seq>__.
func (c *Clock) ScopeName() string {
	return fmt.Sprintf("__scope_%d__", c.Next())
}
