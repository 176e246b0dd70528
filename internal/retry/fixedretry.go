package retry

import (
	"time"

	"rtcore/util"
)

// FixedRetry implements the transport core's reverse-connect retry
// contract: a fixed wait between attempts, bounded by a total retry
// window measured from the first attempt *and* by an absolute
// deadline, whichever comes first. Unlike [Backoff], the delay never
// grows — this matches the reference implementation's coarse
// Sleep(retryWait * 1000) loop.
type FixedRetry struct {
	// Wait is the delay between attempts.
	Wait int64
	// TotalWindow bounds the retry loop relative to its own start
	// time, in seconds. Zero means "only bounded by Deadline".
	TotalWindow int64
	// Deadline is an absolute clock value (seconds), checked after each
	// failed attempt: once Clock.Now() has reached it, the loop stops
	// without sleeping or attempting again.
	Deadline int64
	// Clock supplies Now()/Sleep(); defaults to the real clock.
	Clock util.Clock
}

func (r *FixedRetry) clock() util.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return util.NewSystemClock()
}

// Do runs fn repeatedly until it returns a nil error, the deadline
// passes, or the total retry window elapses. attempt is 1-based. The
// last error returned by fn is returned if the budget is exhausted.
func (r *FixedRetry) Do(fn func(attempt int) error) error {
	clock := r.clock()
	start := clock.Now()
	var lastErr error

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if clock.Now() >= r.Deadline {
			return lastErr
		}

		clock.Sleep(secondsToDuration(r.Wait))

		if r.TotalWindow > 0 && clock.Now()-start >= r.TotalWindow {
			return lastErr
		}
	}
}

func secondsToDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}
