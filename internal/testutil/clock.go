package testutil

import "sync/atomic"

// DeterministicClock is a resettable logical clock for tests.
//
// It satisfies store.SeqSource, so recorded evaluations get the same seq
// values on every test run and golden comparisons stay stable. It is safe
// for concurrent use.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the sequence number.
func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or 0.
func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}

// Reset makes the next call to Next return 1 again.
func (c *DeterministicClock) Reset() {
	c.seq.Store(0)
}
