package mc

import "time"

// Clock supplies wall-clock timestamps at reporting-interval boundaries.
// The sweep loop never reads time directly, so tests can inject a fake clock
// and simulate elapsed time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that tests advance explicitly.
type ManualClock struct {
	t time.Time
}

// NewManualClock creates a ManualClock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}
