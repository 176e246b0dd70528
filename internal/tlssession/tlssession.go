// Package tlssession wraps the command channel in TLS: process-wide
// bring-up/teardown bookkeeping, the client handshake, and the
// post-handshake cover write.
//
// The reference implementation brings up OpenSSL's thread-safety
// machinery here — a process-wide array of locks plus five callbacks
// registered once and torn down once. Go's crypto/tls needs none of
// that; it is safe for concurrent use out of the box. What the spec
// actually requires of this module is idempotent bring-up and a
// teardown that only runs once every bring-up has been matched by a
// deinit, so that's what this package keeps: a sync.Once gate and an
// atomic refcount standing in for the lock array's lifetime.
package tlssession

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	rerrors "rtcore/internal/errors"
)

var (
	initOnce sync.Once
	refcount atomic.Int32
)

// coverRequest is the fixed 27-byte traffic-shaping decoy written
// immediately after a successful handshake. It is not a real HTTP
// request and its response is never read.
const coverRequest = "GET /123456789 HTTP/1.0\r\n\r\n"

// Init performs one-time process-wide bring-up and increments the
// refcount that Deinit later decrements. Safe to call concurrently;
// the underlying setup runs exactly once no matter how many sessions
// call it.
func Init() {
	initOnce.Do(func() {
		// crypto/tls requires no explicit library initialization;
		// this Once exists to mirror the reference's idempotent
		// initialize_ssl contract for callers that depend on it.
	})
	refcount.Add(1)
}

// Deinit decrements the refcount incremented by Init. It never
// actually tears down process-wide state — there is none to tear down
// — but panics on an unbalanced call, since that indicates a session
// called Deinit without a matching Init.
func Deinit() {
	if refcount.Add(-1) < 0 {
		panic("tlssession: Deinit called without matching Init")
	}
}

// Session wraps a handshaken TLS connection.
type Session struct {
	Conn *tls.Conn
}

// Negotiate performs a client-side TLS handshake over conn with peer
// verification disabled, then writes the fixed cover request as a
// single record. It mirrors server_negotiate_ssl's WANT_READ/WANT_WRITE
// retry contract: crypto/tls's Handshake already retries internally on
// those conditions, so the Go side reduces to a single Handshake call
// whose error is fatal.
func Negotiate(ctx context.Context, conn net.Conn, serverName string) (*Session, error) {
	tlsConn := tls.Client(conn, &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // peer verification intentionally disabled, matching spec §4.3
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS10,
	})

	if deadline, ok := ctx.Deadline(); ok {
		_ = tlsConn.SetDeadline(deadline)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", rerrors.ErrHandshakeFailed, err)
	}

	if _, err := tlsConn.Write([]byte(coverRequest)); err != nil {
		return nil, rerrors.WrapTLS("cover-write", err)
	}

	// Clear the deadline set for handshake bring-up; steady-state I/O
	// manages its own timeouts via the dispatch loop.
	_ = tlsConn.SetDeadline(time.Time{})

	return &Session{Conn: tlsConn}, nil
}

// Close shuts down the TLS connection.
func (s *Session) Close() error {
	return s.Conn.Close()
}
