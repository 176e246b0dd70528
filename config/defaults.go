package config

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, environment variable loading, and tests.

const (
	// DefaultCommsTimeout is the idle timeout (seconds) before a
	// session with no incoming packets ends itself.
	DefaultCommsTimeout = 300

	// DefaultRetryTotal is the outer bound (seconds) on the
	// reverse-connect retry loop, measured from its own start.
	// Bind-listen has no retry loop of its own.
	DefaultRetryTotal = 3600

	// DefaultRetryWait is the pause (seconds) between reverse-connect
	// attempts.
	DefaultRetryWait = 5

	// DefaultExpiry is the hard session deadline (seconds) from
	// session creation; unlike RetryTotal it is an absolute bound
	// shared by the retry loop and the dispatch loop.
	DefaultExpiry = 604800 // one week

	// DefaultDispatchPollIntervalMS is the poll granularity of the
	// dispatch loop, in milliseconds.
	DefaultDispatchPollIntervalMS = 50

	// DefaultFlushTickSeconds is the poll granularity of the
	// pre-handshake socket flush.
	DefaultFlushTickSeconds = 1
)
