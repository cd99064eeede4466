package resolvertest

import (
	"sync"
	"time"
)

// Clock fires every wait immediately and records the requested durations.
type Clock struct {
	mu    sync.Mutex
	waits []time.Duration
}

// After records d and returns a channel that is already ready.
func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// Waits returns the durations requested so far.
func (c *Clock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}
