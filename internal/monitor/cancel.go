package monitor

import (
	"sync"
	"sync/atomic"
)

// Canceller is a one-way stop signal for the monitor loop. Once cancelled it
// stays cancelled.
type Canceller struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// NewCanceller returns a Canceller that has not been cancelled.
func NewCanceller() *Canceller {
	return &Canceller{done: make(chan struct{})}
}

// Cancel sets the flag and wakes a sleeping loop. Extra calls do nothing.
func (c *Canceller) Cancel() {
	c.once.Do(func() {
		c.cancelled.Store(true)
		close(c.done)
	})
}

// Cancelled reports whether Cancel has been called.
func (c *Canceller) Cancelled() bool {
	return c.cancelled.Load()
}

// Done is closed by the first Cancel.
func (c *Canceller) Done() <-chan struct{} {
	return c.done
}
