package quiz

import (
	"context"
	"sync"
	"time"
)

// tickInterval is how often the countdown rechecks the deadline.
const tickInterval = time.Second

// Countdown watches a wall-clock deadline and fires a callback exactly once
// when it passes. Remaining time is always recomputed from the deadline
// rather than an accumulating counter, so a slow or delayed tick cannot
// drift the clock. After firing it self-cancels; Stop cancels it early so a
// stale timeout can never reach an already-terminal session.
type Countdown struct {
	deadline time.Time
	cancel   context.CancelFunc
	fireOnce sync.Once
	stopOnce sync.Once
}

// startCountdown launches the ticker goroutine. onTimeout runs at most once,
// from the ticker goroutine.
func startCountdown(deadline time.Time, onTimeout func()) *Countdown {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Countdown{deadline: deadline, cancel: cancel}

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if now.Before(c.deadline) {
					continue
				}
				c.fireOnce.Do(onTimeout)
				c.cancel()
				return
			}
		}
	}()

	return c
}

// Remaining returns the time left until the deadline, floored at zero.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	remaining := c.deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stop cancels the countdown. Safe to call more than once and after the
// countdown has fired.
func (c *Countdown) Stop() {
	c.stopOnce.Do(c.cancel)
}
