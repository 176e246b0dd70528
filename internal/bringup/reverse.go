// Package bringup establishes the raw socket underlying a session
// before TLS is ever negotiated: the three topologies of §4.1/§4.2 —
// outbound reverse connect, inbound bind-listen, and adoption of a
// socket handed over by a previous stage — plus the pre-handshake
// flush of §4.7.
package bringup

import (
	"context"
	"fmt"
	"net"

	"rtcore/internal/retry"
	"rtcore/util"
)

// RetryTimeouts bounds a reverse-connect retry loop: a fixed wait between
// attempts, an outer window measured from the loop's own start, and an
// absolute deadline that wins regardless of the window.
type RetryTimeouts struct {
	Wait   int64
	Total  int64
	Expiry int64
	Clock  util.Clock
}

func (t RetryTimeouts) retry() *retry.FixedRetry {
	return &retry.FixedRetry{
		Wait:        t.Wait,
		TotalWindow: t.Total,
		Deadline:    t.Expiry,
		Clock:       t.Clock,
	}
}

// ReverseV4 resolves host (hostname or dotted-quad) and repeatedly
// dials host:port over IPv4 until it connects or the retry budget in
// timeouts is exhausted.
func ReverseV4(ctx context.Context, host string, port uint16, timeouts RetryTimeouts) (net.Conn, error) {
	addr := util.FormatAddr(host, int(port))
	dialer := net.Dialer{}

	var conn net.Conn
	err := timeouts.retry().Do(func(attempt int) error {
		c, err := dialer.DialContext(ctx, "tcp4", addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bringup: reverse_v4 %s: %w", addr, err)
	}
	return conn, nil
}

// ReverseV6 resolves host/service over IPv6, applying scopeID to every
// candidate address (per spec §4.1, the scope id is set before each
// connect attempt, not just the first), and connects to the first
// address that accepts within the retry budget.
func ReverseV6(ctx context.Context, host, service string, scopeID uint32, timeouts RetryTimeouts) (net.Conn, error) {
	resolver := net.Resolver{}
	dialer := net.Dialer{}

	var conn net.Conn
	err := timeouts.retry().Do(func(attempt int) error {
		addrs, err := resolver.LookupIPAddr(ctx, host)
		if err != nil {
			return err
		}
		var lastErr error
		for _, ip := range addrs {
			if ip.IP.To4() != nil {
				continue // IPv6-only candidates
			}
			addr := net.JoinHostPort(ip.IP.String()+zoneSuffix(scopeID), service)
			c, dialErr := dialer.DialContext(ctx, "tcp6", addr)
			if dialErr != nil {
				lastErr = dialErr
				continue
			}
			conn = c
			return nil
		}
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("bringup: no IPv6 candidates for %s", host)
	})
	if err != nil {
		return nil, fmt.Errorf("bringup: reverse_v6 %s: %w", host, err)
	}
	return conn, nil
}

func zoneSuffix(scopeID uint32) string {
	if scopeID == 0 {
		return ""
	}
	return fmt.Sprintf("%%%d", scopeID)
}
