// Package clock abstracts time for components that sleep or schedule work so
// tests can control it.
package clock

import "time"

// Clock provides the current time and timed waits.
type Clock interface {
	Now() time.Time
	// After behaves like time.After relative to this clock.
	After(d time.Duration) <-chan time.Time
}

type clock struct{}

// New returns a Clock backed by real time.
func New() Clock {
	return clock{}
}

func (clock) Now() time.Time {
	return time.Now()
}

func (clock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// ManagedClock is a hand managed clock for tests. Waits complete immediately
// and advance the clock by the waited duration.
type ManagedClock struct {
	startTime time.Time
	offset    time.Duration
}

// NewManaged returns an initialized ManagedClock for use in tests.
func NewManaged(startTime time.Time) *ManagedClock {
	return &ManagedClock{startTime: startTime}
}

// Now returns the current managed time.
func (c *ManagedClock) Now() time.Time {
	return c.startTime.Add(c.offset)
}

// After warps time forward by d and returns an already fired channel.
func (c *ManagedClock) After(d time.Duration) <-chan time.Time {
	c.offset += d
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// WarpForward moves time forward by the provided offset and returns the new time.
func (c *ManagedClock) WarpForward(offset time.Duration) time.Time {
	c.offset += offset
	return c.Now()
}

// Why is there no WarpBackward? Time should never go backwards, especially in your tests
