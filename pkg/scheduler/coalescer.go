package scheduler

import (
	"sync"
	"time"
)

// Coalescer runs keyed work after a quiet period. Scheduling a key that is
// already pending cancels the earlier call and starts the wait again.
type Coalescer struct {
	mu      sync.Mutex
	entries map[string]*Debouncer
	stopped bool
}

// NewCoalescer returns an empty Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{entries: make(map[string]*Debouncer)}
}

// Schedule runs fn once key has not been scheduled again for delay.
func (c *Coalescer) Schedule(key string, delay time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}

	d, ok := c.entries[key]
	if !ok || d.delay != delay {
		if ok {
			d.Cancel()
		}
		d = NewDebouncer(delay)
		c.entries[key] = d
	}
	d.Trigger(fn)
}

// Flush runs the pending call for key now, if any.
func (c *Coalescer) Flush(key string) {
	c.mu.Lock()
	d, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		d.Flush()
	}
}

// Pending reports whether key has a scheduled call.
func (c *Coalescer) Pending(key string) bool {
	c.mu.Lock()
	d, ok := c.entries[key]
	c.mu.Unlock()
	return ok && d.Pending()
}

// Stop cancels every pending call and rejects further scheduling.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for key, d := range c.entries {
		d.Cancel()
		delete(c.entries, key)
	}
}
