package animation

import (
	"sync"
	"time"
)

// pausableClock tracks elapsed playback time, freezing while paused so
// a resumed timeline continues from its prior position instead of
// restarting.
type pausableClock struct {
	mu          sync.Mutex
	epoch       time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	paused      bool
}

func newPausableClock() *pausableClock {
	return &pausableClock{epoch: time.Now()}
}

// Elapsed returns playback time since the epoch, excluding pauses.
func (c *pausableClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return c.pausedAt.Sub(c.epoch) - c.pausedTotal
	}
	return time.Since(c.epoch) - c.pausedTotal
}

func (c *pausableClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = time.Now()
}

func (c *pausableClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.pausedTotal += time.Since(c.pausedAt)
	c.paused = false
}

// Rewind restarts the clock so that Elapsed() == offset right now,
// preserving the pause state.
func (c *pausableClock) Rewind(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.epoch = now.Add(-offset)
	c.pausedTotal = 0
	if c.paused {
		c.pausedAt = now
	}
}
