package remote

import (
	"context"
	"testing"

	"rtcore/internal/scheduler"
	"rtcore/internal/wire"
)

type noopTransport struct{ configured bool }

func (t *noopTransport) Configure(ctx context.Context, r *Remote, fd uintptr) error {
	t.configured = true
	return nil
}
func (t *noopTransport) Deinit(r *Remote) error  { return nil }
func (t *noopTransport) Destroy(r *Remote) error { return nil }
func (t *noopTransport) Reset(r *Remote) error   { return nil }
func (t *noopTransport) Dispatch(ctx context.Context, r *Remote, h CommandHandler, sched scheduler.Scheduler) error {
	return nil
}
func (t *noopTransport) Transmit(r *Remote, p *wire.Packet, completion func(*wire.Packet)) error {
	return nil
}
func (t *noopTransport) GetSocket() uintptr { return 0 }

func TestRemote_TransportAndCipherAccessors(t *testing.T) {
	r := New()
	if r.GetTransport() != nil {
		t.Error("new Remote should have no transport")
	}
	if r.GetCipher() != nil {
		t.Error("new Remote should have no cipher")
	}

	tr := &noopTransport{}
	r.SetTransport(tr)
	if r.GetTransport() != tr {
		t.Error("GetTransport should return the installed transport")
	}

	if err := r.GetTransport().Configure(context.Background(), r, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.configured {
		t.Error("Configure should have run against the installed transport")
	}
}

func TestRemote_LockUnlock(t *testing.T) {
	r := New()
	r.Lock()
	r.Unlock()
}

func TestRemote_RegisterResolveCompletion(t *testing.T) {
	r := New()

	var got *wire.Packet
	r.RegisterCompletion("req-1", func(p *wire.Packet) { got = p })

	pkt := wire.NewPacket(0x0042, []byte("reply"))
	fn, ok := r.ResolveCompletion("req-1")
	if !ok {
		t.Fatal("expected a registered completion for req-1")
	}
	fn(pkt)
	if got != pkt {
		t.Error("resolved completion should have received the packet it was invoked with")
	}

	if _, ok := r.ResolveCompletion("req-1"); ok {
		t.Error("ResolveCompletion should pop the completion, not leave it registered")
	}
}

func TestRemote_ResolveCompletion_UnknownIDReturnsFalse(t *testing.T) {
	r := New()
	if _, ok := r.ResolveCompletion("nonexistent"); ok {
		t.Error("expected no completion registered for an unknown request id")
	}
}
