package util

import "time"

// Clock abstracts wall-clock time so retry loops and dispatch timers
// can be driven by a fake clock in tests without sleeping for real.
type Clock interface {
	// Now returns the current time, truncated to whole seconds — the
	// transport core only ever reasons about second-resolution
	// deadlines (retry_total, expiry, comms).
	Now() int64
	// Sleep blocks for d, honouring millisecond resolution.
	Sleep(d time.Duration)
}

// SystemClock is the default Clock backed by the real wall clock.
type SystemClock struct{}

// Now returns time.Now() truncated to a Unix second count.
func (SystemClock) Now() int64 { return time.Now().Unix() }

// Sleep calls time.Sleep directly.
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// NewSystemClock returns the default real-time Clock.
func NewSystemClock() Clock { return SystemClock{} }
