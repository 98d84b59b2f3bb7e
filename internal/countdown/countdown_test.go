package countdown

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFiresAfterDuration(t *testing.T) {
	fired := make(chan struct{})
	c := New(func() { close(fired) })

	c.Activate(10*time.Millisecond, "scan-1")
	if !c.IsRunning() {
		t.Fatal("IsRunning() = false right after Activate")
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timeout callback never fired")
	}
	if c.IsRunning() {
		t.Error("IsRunning() = true after the countdown completed")
	}
}

func TestDeactivateCancelsPendingTimeout(t *testing.T) {
	var fired atomic.Int32
	c := New(func() { fired.Add(1) })

	c.Activate(20*time.Millisecond, "scan-1")
	c.Deactivate()

	time.Sleep(60 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("callback fired %d times after Deactivate, want 0", n)
	}
	if c.IsRunning() {
		t.Error("IsRunning() = true after Deactivate")
	}
}

func TestResetKeyRestartsCountdown(t *testing.T) {
	var fired atomic.Int32
	c := New(func() { fired.Add(1) })

	c.Activate(50*time.Millisecond, "scan-1")
	key := c.AnimationKey()

	time.Sleep(30 * time.Millisecond)
	c.Activate(50*time.Millisecond, "scan-2")
	if c.AnimationKey() == key {
		t.Error("AnimationKey did not advance on reset key change")
	}

	// The original countdown would have expired by now; the restarted
	// one must still be pending.
	time.Sleep(30 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Fatalf("callback fired %d times before the restarted countdown elapsed", n)
	}

	time.Sleep(40 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("callback fired %d times, want exactly 1", n)
	}
}

func TestSameResetKeyDoesNotRestart(t *testing.T) {
	c := New(func() {})

	c.Activate(time.Minute, "scan-1")
	key := c.AnimationKey()
	c.Activate(time.Minute, "scan-1")
	if c.AnimationKey() != key {
		t.Error("AnimationKey advanced for a repeated Activate with the same key")
	}
}

func TestNeverTwoLiveTimers(t *testing.T) {
	var fired atomic.Int32
	c := New(func() { fired.Add(1) })

	for i := 0; i < 5; i++ {
		c.Activate(20*time.Millisecond, "a")
		c.Activate(20*time.Millisecond, "b")
	}

	time.Sleep(80 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("callback fired %d times, want 1 (only the last timer may be live)", n)
	}
}
