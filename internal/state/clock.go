package state

import (
	"sync/atomic"
)

// Clock is a monotonically increasing revision counter. The document store
// ticks it every time a surface's persisted text or bounding box changes so
// observers can order the updates they receive.
type Clock struct {
	n atomic.Uint64
}

// Tick advances the clock and returns the new revision.
func (c *Clock) Tick() uint64 {
	return c.n.Add(1)
}

// Now returns the current revision without advancing it.
func (c *Clock) Now() uint64 {
	return c.n.Load()
}

// Update moves the clock forward to at least rev, e.g. after loading a
// document that was saved at a later revision.
func (c *Clock) Update(rev uint64) {
	for {
		cur := c.n.Load()
		if rev <= cur || c.n.CompareAndSwap(cur, rev) {
			return
		}
	}
}
