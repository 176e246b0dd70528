// Package switcher provides a registry of named transports and the
// logic to swap the active one under the owning remote's lock — the
// spec's "higher-level multi-transport switcher that may swap
// transports" collaborator (spec §1's out-of-scope list).
package switcher

import (
	"context"
	"fmt"
	"sync"

	"rtcore/internal/remote"
)

// Switcher holds a set of named transports registered against one
// Remote and swaps the active one on request, running the matching
// Reset/Configure pair under the remote's lock.
type Switcher struct {
	r *remote.Remote

	mu         sync.Mutex
	transports map[string]remote.Transport
	active     string
}

// New creates a Switcher for r. r's transport should already be one
// of the entries later registered via Register, or left nil until the
// first Use.
func New(r *remote.Remote) *Switcher {
	return &Switcher{r: r, transports: make(map[string]remote.Transport)}
}

// Register adds or replaces a named transport. It does not affect the
// currently active transport.
func (s *Switcher) Register(name string, t remote.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transports[name] = t
}

// Active returns the name of the currently active transport, or ""
// if none has been switched to yet.
func (s *Switcher) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Use switches the Remote to the named transport: it resets the
// outgoing transport (if any), installs the new one, and configures
// it. inheritedFD is forwarded to Configure, for the same reason
// transport.Configure accepts one: the first transport in a process's
// life may need to adopt a socket handed down by a prior stage.
func (s *Switcher) Use(ctx context.Context, name string, inheritedFD uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.transports[name]
	if !ok {
		return fmt.Errorf("switcher: no transport registered as %q", name)
	}

	s.r.Lock()
	defer s.r.Unlock()

	if current := s.r.GetTransport(); current != nil && s.active != "" {
		if err := current.Reset(s.r); err != nil {
			return fmt.Errorf("switcher: reset %q: %w", s.active, err)
		}
	}

	s.r.SetTransport(next)
	if err := next.Configure(ctx, s.r, inheritedFD); err != nil {
		return fmt.Errorf("switcher: configure %q: %w", name, err)
	}
	s.active = name
	return nil
}
