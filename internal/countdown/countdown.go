// Package countdown provides the auto-dismiss timer shared by every modal
package countdown

import (
	"sync"
	"time"
)

// Coordinator runs at most one pending timeout at a time. Activating it
// cancels any prior timer, changing the reset key while active restarts
// the countdown, and deactivating guarantees the callback never fires
// late.
type Coordinator struct {
	mu           sync.Mutex
	timer        *time.Timer
	running      bool
	resetKey     string
	duration     time.Duration
	animationKey int
	generation   int
	onTimeout    func()
}

// New creates a Coordinator that invokes onTimeout when a countdown
// completes. onTimeout runs on the timer goroutine without the internal
// lock held.
func New(onTimeout func()) *Coordinator {
	return &Coordinator{onTimeout: onTimeout}
}

// Activate starts the countdown for d. If a countdown is already
// running with the same reset key the call is a no-op, so a repeated
// render does not restart the dwell time; a new reset key (a new scan
// of the same kind) restarts it.
func (c *Coordinator) Activate(d time.Duration, resetKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running && c.resetKey == resetKey {
		return
	}
	c.stopLocked()
	c.running = true
	c.resetKey = resetKey
	c.duration = d
	c.animationKey++
	c.generation++

	gen := c.generation
	c.timer = time.AfterFunc(d, func() { c.fire(gen) })
}

// Deactivate cancels the pending timeout, even if it has not fired
func (c *Coordinator) Deactivate() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Coordinator) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.running = false
	c.generation++
}

func (c *Coordinator) fire(gen int) {
	c.mu.Lock()
	if !c.running || gen != c.generation {
		// A later Activate or Deactivate superseded this timer
		c.mu.Unlock()
		return
	}
	c.running = false
	c.timer = nil
	cb := c.onTimeout
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// IsRunning reports whether a countdown is pending
func (c *Coordinator) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// AnimationKey increases every time the countdown restarts, letting a
// visual progress bar reset from the top.
func (c *Coordinator) AnimationKey() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.animationKey
}
