package engine

import "sync/atomic"

// Clock is the logical clock that stamps runs and members with a strictly
// increasing seq. The store orders its history by seq, never by wall time.
//
// Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock positioned at start. The engine resumes from
// the store's highest seq so a reopened log keeps growing monotonically.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued seq.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
