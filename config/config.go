// Package config defines the runtime configuration for the transport
// core and provides helpers for loading it from flags, environment
// variables, and defaults.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Timeouts holds the four session clocks the spec names: idle
// (Comms), the reverse-connect retry window (RetryTotal), the wait
// between retry attempts (RetryWait), and the hard session deadline
// measured from creation (Expiry). All are in seconds.
type Timeouts struct {
	Comms      int64
	RetryTotal int64
	RetryWait  int64
	Expiry     int64
}

// DefaultTimeouts returns the package defaults (see defaults.go).
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Comms:      DefaultCommsTimeout,
		RetryTotal: DefaultRetryTotal,
		RetryWait:  DefaultRetryWait,
		Expiry:     DefaultExpiry,
	}
}

// Config holds every tuneable for a single transport session.
type Config struct {
	// URL is the transport-url per spec §6, e.g. "tcp://192.0.2.1:4444"
	// or "tcp://:4444" for bind mode.
	URL string

	Timeouts Timeouts

	// CipherKey, when non-empty, seeds the session's CryptoContext.
	// Left empty, the session runs unencrypted.
	CipherKey []byte

	// Verbose is the logger verbosity: 0=quiet, 1=normal, 2=verbose, 3=debug.
	Verbose int
}

// FieldError describes a single invalid configuration field, with an
// optional hint for how to fix it.
type FieldError struct {
	Field   string
	Value   interface{}
	Message string
	Hint    string
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("config: %s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// Validate rejects configurations the transport core cannot act on.
func (c *Config) Validate() error {
	if c.URL == "" {
		return &FieldError{Field: "url", Message: "must not be empty", Hint: `use a scheme of tcp or tcp6, e.g. "tcp://192.0.2.1:4444"`}
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return &FieldError{Field: "url", Value: c.URL, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	switch u.Scheme {
	case "tcp", "tcp6":
	default:
		return &FieldError{Field: "url", Value: c.URL, Message: "scheme must be tcp or tcp6", Hint: `bind mode looks like "tcp://:4444"`}
	}
	if u.Port() == "" {
		return &FieldError{Field: "url", Value: c.URL, Message: "port is required"}
	}

	if c.Timeouts.RetryTotal < 0 || c.Timeouts.RetryWait < 0 || c.Timeouts.Comms < 0 {
		return &FieldError{Field: "timeouts", Message: "retry_total, retry_wait, and comms must be >= 0"}
	}
	if c.Timeouts.Expiry <= 0 {
		return &FieldError{Field: "timeouts.expiry", Value: c.Timeouts.Expiry, Message: "must be > 0", Hint: "expiry is an absolute deadline in seconds from session creation"}
	}
	return nil
}

// IsBindMode reports whether c.URL describes a bind-listen transport
// (empty host) rather than a reverse-connect one.
func (c *Config) IsBindMode() bool {
	u, err := url.Parse(c.URL)
	if err != nil {
		return false
	}
	return strings.TrimSpace(u.Hostname()) == ""
}
