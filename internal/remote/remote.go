// Package remote provides the Remote collaborator: the lock-owning
// object every transport operation is performed through, plus the
// small interfaces (Transport, CommandHandler) that let the transport
// and command layers plug into it without creating an import cycle
// between them.
package remote

import (
	"context"
	"sync"

	"rtcore/internal/scheduler"
	"rtcore/internal/wire"
)

// Disposition is a command handler's verdict after processing one
// packet: whether the dispatch loop should keep running or stop.
type Disposition int

const (
	// Continue tells the dispatch loop to keep reading packets.
	Continue Disposition = iota
	// Stop tells the dispatch loop to exit cleanly, as if the peer
	// had closed the connection.
	Stop
)

// CommandHandler processes one decoded packet. It is the spec's
// command_handle collaborator.
type CommandHandler interface {
	Handle(r *Remote, p *wire.Packet) (Disposition, error)
}

// Transport is the six-operation lifecycle every concrete transport
// (TCP/TLS today, others in the future) must implement. Every method
// takes the owning Remote so it can acquire the shared lock for its
// full duration, per spec §5.
type Transport interface {
	// Configure brings the transport up: socket bring-up, optional
	// adoption of inheritedFD (0 means none), TLS negotiation.
	Configure(ctx context.Context, r *Remote, inheritedFD uintptr) error
	// Deinit tears down TLS state but keeps ctx.sock_desc for reuse.
	Deinit(r *Remote) error
	// Destroy frees the transport's own resources (URL, context).
	Destroy(r *Remote) error
	// Reset closes the socket but preserves the remembered address so
	// a subsequent Configure can reconnect/rebind the same way.
	Reset(r *Remote) error
	// Dispatch runs the packet-receive/command-dispatch loop until
	// termination, idle timeout, expiry, or a fatal I/O error. It owns
	// sched's lifecycle for the duration of the loop: starting it
	// before the first poll and stopping it (joining outstanding work)
	// on every exit path, per spec §4.5 steps 1 and 4.
	Dispatch(ctx context.Context, r *Remote, handler CommandHandler, sched scheduler.Scheduler) error
	// Transmit sends one packet, attaching a request id and applying
	// the session cipher as needed. When completion is non-nil, it is
	// registered against the packet's request id and invoked later if
	// a reply carrying that id arrives through Dispatch.
	Transmit(r *Remote, p *wire.Packet, completion func(*wire.Packet)) error
	// GetSocket returns the underlying file descriptor for transports
	// of the TCP/TLS kind, or 0 otherwise.
	GetSocket() uintptr
}

// Remote is the lock-owning collaborator threaded through every
// transport operation. It holds the active cipher (nil when no
// encryption is configured) and the active transport.
type Remote struct {
	mu sync.Mutex

	cipher    wire.Cipher
	transport Transport

	completionsMu sync.Mutex
	completions   map[string]func(*wire.Packet)
}

// New creates a Remote with no transport or cipher configured yet.
func New() *Remote {
	return &Remote{}
}

// Lock acquires the remote lock. Every transport operation must hold
// it for its full duration (spec §5).
func (r *Remote) Lock() { r.mu.Lock() }

// Unlock releases the remote lock.
func (r *Remote) Unlock() { r.mu.Unlock() }

// SetTransport installs the active transport.
func (r *Remote) SetTransport(t Transport) { r.transport = t }

// GetTransport returns the active transport, or nil if none is set.
func (r *Remote) GetTransport() Transport { return r.transport }

// SetCipher installs the session cipher. Pass nil to disable
// encryption.
func (r *Remote) SetCipher(c wire.Cipher) { r.cipher = c }

// GetCipher returns the active session cipher, or nil if none is set.
func (r *Remote) GetCipher() wire.Cipher { return r.cipher }

// RegisterCompletion associates fn with requestID, the command
// subsystem registration spec §4.4 step 2 names: a later reply
// carrying the same request id is routed to fn by Dispatch instead of
// the general command handler. A nil fn or empty requestID is a no-op.
func (r *Remote) RegisterCompletion(requestID string, fn func(*wire.Packet)) {
	if fn == nil || requestID == "" {
		return
	}
	r.completionsMu.Lock()
	defer r.completionsMu.Unlock()
	if r.completions == nil {
		r.completions = make(map[string]func(*wire.Packet))
	}
	r.completions[requestID] = fn
}

// ResolveCompletion pops and returns the completion registered for
// requestID, if any.
func (r *Remote) ResolveCompletion(requestID string) (func(*wire.Packet), bool) {
	if requestID == "" {
		return nil, false
	}
	r.completionsMu.Lock()
	defer r.completionsMu.Unlock()
	fn, ok := r.completions[requestID]
	if ok {
		delete(r.completions, requestID)
	}
	return fn, ok
}
