// Package command supplies concrete command_handle implementations
// for the dispatch loop's out-of-scope command subsystem: given a
// decoded packet, decide whether to keep dispatching, and optionally
// transmit a response.
package command

import (
	"context"
	"fmt"

	"rtcore/internal/remote"
	"rtcore/internal/scheduler"
	"rtcore/internal/wire"
)

// Handler is the spec's command_handle(remote, packet) -> continue?
// collaborator. It is the same shape as remote.CommandHandler; this
// alias lets callers that only care about the command layer avoid
// naming the remote package directly.
type Handler = remote.CommandHandler

// Echo is a reference Handler: it transmits every packet it receives
// straight back to the peer with the same type and payload, and keeps
// the dispatch loop running. Useful for conformance tests and as a
// starting point for real command subsystems. When Scheduler is set,
// the reply is produced by a worker goroutine instead of inline on
// the dispatch thread, matching spec §4.5's note that the scheduler
// may spawn worker threads that produce outbound packets via
// transmit_packet.
type Echo struct {
	Scheduler scheduler.Scheduler
}

// Handle implements Handler.
func (e Echo) Handle(r *remote.Remote, p *wire.Packet) (remote.Disposition, error) {
	transport := r.GetTransport()
	if transport == nil {
		return remote.Stop, fmt.Errorf("command: echo: no transport attached to remote")
	}
	reply := wire.NewPacket(p.Header.Type, p.Payload)

	if e.Scheduler != nil {
		if err := e.Scheduler.Submit(func(ctx context.Context) error {
			return transport.Transmit(r, reply, nil)
		}); err != nil {
			return remote.Stop, fmt.Errorf("command: echo: submit reply: %w", err)
		}
		return remote.Continue, nil
	}

	if err := transport.Transmit(r, reply, nil); err != nil {
		return remote.Stop, fmt.Errorf("command: echo: transmit reply: %w", err)
	}
	return remote.Continue, nil
}

// StopOnType is a reference Handler used in tests and simple demos:
// it signals Stop as soon as it sees a packet of the configured type,
// and Continue (doing nothing else) for every other packet.
type StopOnType struct {
	Type uint32
}

// Handle implements Handler.
func (s StopOnType) Handle(r *remote.Remote, p *wire.Packet) (remote.Disposition, error) {
	if p.Type() == s.Type {
		return remote.Stop, nil
	}
	return remote.Continue, nil
}
