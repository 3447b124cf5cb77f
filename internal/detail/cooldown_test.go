package detail

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCooldownBlocksWhileRunning(t *testing.T) {
	c := NewCooldown(time.Hour)
	if !c.TryStart(30) {
		t.Fatal("first start should succeed")
	}
	if c.TryStart(30) {
		t.Fatal("second start during the window should be rejected")
	}
	if got := c.Remaining(); got != 30 {
		t.Fatalf("remaining = %d, want 30", got)
	}
}

func TestCooldownCountsDownToZero(t *testing.T) {
	c := NewCooldown(time.Millisecond)
	if !c.TryStart(3) {
		t.Fatal("start should succeed")
	}
	waitFor(t, time.Second, func() bool { return c.Remaining() == 0 })
	if !c.TryStart(3) {
		t.Fatal("start after the window expired should succeed")
	}
}

func TestCooldownStopClears(t *testing.T) {
	c := NewCooldown(time.Hour)
	if !c.TryStart(30) {
		t.Fatal("start should succeed")
	}
	c.Stop()
	if got := c.Remaining(); got != 0 {
		t.Fatalf("remaining after stop = %d, want 0", got)
	}
	if !c.TryStart(30) {
		t.Fatal("start after stop should succeed")
	}
}

func TestCooldownZeroTicksIsImmediate(t *testing.T) {
	c := NewCooldown(time.Hour)
	if !c.TryStart(0) {
		t.Fatal("zero-tick start should report accepted")
	}
	if got := c.Remaining(); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
	if !c.TryStart(0) {
		t.Fatal("zero-tick window never blocks")
	}
}
