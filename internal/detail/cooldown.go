package detail

import (
	"sync"
	"time"
)

// DefaultCooldownSeconds is the add-to-cart cooldown window.
const DefaultCooldownSeconds = 30

// Cooldown is the add-to-cart countdown for one visit: a ticking clock that
// decrements once per interval until it reaches zero. The window is tied to
// wall-clock time since the attempt, never to the request outcome. Each
// controller owns exactly one Cooldown and must Stop it on teardown so the
// ticker cannot act on a discarded view.
type Cooldown struct {
	interval time.Duration

	mu        sync.Mutex
	remaining int
	cancel    chan struct{}
}

// NewCooldown builds a countdown ticking at the given interval.
// Production uses one second; tests shrink it.
func NewCooldown(interval time.Duration) *Cooldown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Cooldown{interval: interval}
}

// Remaining returns the ticks left until the next trigger is accepted.
func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// TryStart arms the countdown for the given number of ticks. It reports
// false, without rearming, when a countdown is already running.
func (c *Cooldown) TryStart(ticks int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		return false
	}
	if ticks <= 0 {
		return true
	}
	c.remaining = ticks
	cancel := make(chan struct{})
	c.cancel = cancel
	go c.run(cancel)
	return true
}

// Stop cancels the countdown and clears the remaining time.
func (c *Cooldown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.remaining = 0
}

func (c *Cooldown) run(cancel chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.cancel != cancel {
				// Stopped and possibly rearmed since this tick fired.
				c.mu.Unlock()
				return
			}
			c.remaining--
			done := c.remaining <= 0
			if done {
				c.remaining = 0
				c.cancel = nil
			}
			c.mu.Unlock()
			if done {
				return
			}
		}
	}
}
