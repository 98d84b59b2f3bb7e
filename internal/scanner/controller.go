package scanner

import (
	"fmt"
	"log"
	"sync"

	"rfid-kiosk/internal/models"
)

// State of the controller's lifecycle machine
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Controller drives the scan source through Stopped → Starting →
// Running → Stopping → Stopped, idempotently. It also remembers
// whether scanning *should* be on, so a source that dropped (for
// example while a modal paused it) can be resumed.
type Controller struct {
	mu         sync.Mutex
	source     Source
	state      State
	shouldScan bool
	lastError  string
	errorCount int
}

// NewController wraps a source; the controller starts out Stopped
func NewController(source Source) *Controller {
	return &Controller{source: source, state: StateStopped}
}

// Start brings the source up. Calling Start while already running is a
// no-op that still reconciles the logical scanning flag.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shouldScan = true
	if c.state == StateRunning || c.state == StateStarting {
		return nil
	}

	c.state = StateStarting
	if err := c.source.Start(); err != nil {
		c.state = StateStopped
		c.errorCount++
		c.lastError = err.Error()
		return fmt.Errorf("failed to start scan source: %w", err)
	}
	c.state = StateRunning
	c.lastError = ""
	return nil
}

// Stop brings the source down. A Stop while never started leaves the
// source untouched but still clears the logical scanning flag. Local
// state is forced to Stopped even when the source's Stop fails, so the
// UI cannot get stuck.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shouldScan = false
	if c.state == StateStopped {
		return nil
	}

	c.state = StateStopping
	err := c.source.Stop()
	c.state = StateStopped
	if err != nil {
		c.errorCount++
		c.lastError = err.Error()
		return fmt.Errorf("failed to stop scan source: %w", err)
	}
	return nil
}

// SyncState reconciles local tracking with the source's actual running
// flag. Called on mount so a remount does not double-start hardware.
func (c *Controller) SyncState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	running := c.source.IsRunning()
	switch {
	case running && c.state != StateRunning:
		log.Println("Scan source already running, reconciling controller state")
		c.state = StateRunning
		c.shouldScan = true
	case !running && c.state == StateRunning:
		c.state = StateStopped
	}
}

// ResumeIfNeeded restarts scanning when it should be on but the source
// has dropped. Wired to modal-close so modal-driven pauses recover
// without manual intervention.
func (c *Controller) ResumeIfNeeded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.shouldScan || c.source.IsRunning() {
		return
	}

	log.Println("Scan source dropped while scanning expected, restarting")
	c.state = StateStarting
	if err := c.source.Start(); err != nil {
		c.state = StateStopped
		c.errorCount++
		c.lastError = err.Error()
		log.Printf("❌ Failed to resume scan source: %v", err)
		return
	}
	c.state = StateRunning
}

// Events exposes the source's read stream
func (c *Controller) Events() <-chan models.ScanEvent {
	return c.source.Events()
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsScanning reports the logical "should be scanning" flag
func (c *Controller) IsScanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldScan
}

// LastError returns the most recent lifecycle failure, with a count
func (c *Controller) LastError() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError, c.errorCount
}
