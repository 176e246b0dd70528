package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"rtcore/config"
	"rtcore/internal/bringup"
	rerrors "rtcore/internal/errors"
	"rtcore/internal/metrics"
	"rtcore/internal/remote"
	"rtcore/internal/scheduler"
	"rtcore/internal/tlssession"
	"rtcore/internal/wire"
	"rtcore/util"
)

// netError is satisfied by any error (possibly wrapped) carrying a
// Timeout() verdict, letting pollAndRead distinguish an idle poll tick
// from a genuine read failure.
type netError interface {
	Timeout() bool
}

// dispatchPollInterval is the granularity of the dispatch loop's idle
// check, matching the 50ms poll cadence of spec §4.5.
const dispatchPollInterval = time.Duration(config.DefaultDispatchPollIntervalMS) * time.Millisecond

// TCPTLSTransport is the concrete TCP/TLS binding of remote.Transport:
// it owns the raw socket, the negotiated TLS session, and the
// bookkeeping (start time, expiry, last-packet clock) the dispatch
// loop needs.
type TCPTLSTransport struct {
	url      string
	timeouts config.Timeouts
	logger   *util.Logger
	clock    util.Clock

	parsed   parsedURL
	sockDesc bringup.SockDesc

	conn    net.Conn
	session *tlssession.Session
	metrics *metrics.Collector

	startTime       int64
	expirationEnd   int64
	commsLastPacket int64
}

// SetMetrics attaches a collector for connection, packet and error
// counters. A nil collector (the default) makes every metrics call a
// no-op, so this is optional.
func (t *TCPTLSTransport) SetMetrics(m *metrics.Collector) {
	t.metrics = m
}

// New creates a transport for url with the given timeouts. logger and
// clock may be nil; logger defaults to a quiet logger and clock to
// the real system clock.
func New(url string, timeouts config.Timeouts, logger *util.Logger, clock util.Clock) *TCPTLSTransport {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	if clock == nil {
		clock = util.NewSystemClock()
	}
	return &TCPTLSTransport{url: url, timeouts: timeouts, logger: logger, clock: clock}
}

func (t *TCPTLSTransport) now() int64 { return t.clock.Now() }

// Configure implements spec §4.6's configure(remote, inherited_socket).
func (t *TCPTLSTransport) Configure(ctx context.Context, r *remote.Remote, inheritedFD uintptr) error {
	t.startTime = t.now()
	t.commsLastPacket = t.startTime
	t.expirationEnd = t.startTime + t.timeouts.Expiry

	retryTimeouts := bringup.RetryTimeouts{
		Wait:   t.timeouts.RetryWait,
		Total:  t.timeouts.RetryTotal,
		Expiry: t.expirationEnd,
		Clock:  t.clock,
	}

	var conn net.Conn
	var err error

	switch {
	case t.url != "":
		p, perr := parseURL(t.url)
		if perr != nil {
			return perr
		}
		t.parsed = p

		switch {
		case p.isBind():
			conn, err = bringup.BindListen(ctx, p.Port)
			if err == nil {
				t.sockDesc = bringup.SockDesc{Bound: true, Addr: conn.LocalAddr()}
			}
		case p.V6:
			conn, err = bringup.ReverseV6(ctx, p.Host, fmt.Sprintf("%d", p.Port), p.ScopeID, retryTimeouts)
			if err == nil {
				t.sockDesc = bringup.SockDesc{Bound: false, Addr: conn.RemoteAddr()}
			}
		default:
			conn, err = bringup.ReverseV4(ctx, p.Host, p.Port, retryTimeouts)
			if err == nil {
				t.sockDesc = bringup.SockDesc{Bound: false, Addr: conn.RemoteAddr()}
			}
		}
	case t.sockDesc.Addr != nil:
		// A prior adopt or reset left a remembered address: reconnect
		// or rebind the same way the session was originally brought up.
		conn, err = t.reconnectRemembered(ctx, retryTimeouts)
	default:
		var desc bringup.SockDesc
		conn, desc, err = bringup.Adopt(inheritedFD)
		if err == nil {
			t.sockDesc = desc
		}
	}
	if err != nil {
		return fmt.Errorf("transport: bring-up: %w", err)
	}

	setNoInherit(conn)

	if err := bringup.Flush(conn); err != nil {
		conn.Close()
		return fmt.Errorf("transport: flush: %w", err)
	}

	tlssession.Init()
	session, err := tlssession.Negotiate(ctx, conn, t.parsed.Host)
	if err != nil {
		tlssession.Deinit()
		conn.Close()
		t.metrics.HandshakeFailure()
		t.metrics.RecordError(err.Error())
		return err
	}

	t.conn = conn
	t.session = session
	t.metrics.ConnectionOpened()
	return nil
}

func (t *TCPTLSTransport) reconnectRemembered(ctx context.Context, timeouts bringup.RetryTimeouts) (net.Conn, error) {
	if t.sockDesc.Bound {
		tcpAddr, ok := t.sockDesc.Addr.(*net.TCPAddr)
		if !ok {
			return nil, fmt.Errorf("transport: remembered bind address has unexpected type %T", t.sockDesc.Addr)
		}
		return bringup.BindListen(ctx, uint16(tcpAddr.Port))
	}
	tcpAddr, ok := t.sockDesc.Addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("transport: remembered peer address has unexpected type %T", t.sockDesc.Addr)
	}
	if tcpAddr.IP.To4() != nil {
		return bringup.ReverseV4(ctx, tcpAddr.IP.String(), uint16(tcpAddr.Port), timeouts)
	}
	return bringup.ReverseV6(ctx, tcpAddr.IP.String(), fmt.Sprintf("%d", tcpAddr.Port), t.parsed.ScopeID, timeouts)
}

// Deinit implements spec §4.6's deinit: tear down TLS but keep
// sock_desc for reuse.
func (t *TCPTLSTransport) Deinit(r *remote.Remote) error {
	if t.session != nil {
		if err := t.session.Close(); err != nil {
			t.logger.Warn("transport: closing TLS session: %v", err)
		}
		t.session = nil
	}
	tlssession.Deinit()
	return nil
}

// Destroy implements spec §4.6's destroy: free the transport's own
// resources.
func (t *TCPTLSTransport) Destroy(r *remote.Remote) error {
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		t.metrics.ConnectionClosed()
		return err
	}
	return nil
}

// Reset implements spec §4.6's reset: close the socket but preserve
// the remembered address so the next Configure can reconnect the same
// way.
func (t *TCPTLSTransport) Reset(r *remote.Remote) error {
	t.metrics.TransportReset()
	if t.session != nil {
		_ = t.session.Close()
		t.session = nil
	}
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		return err
	}
	return nil
}

// Transmit implements spec §4.4's transmit_packet: attach a request
// id, register completion against it if given, encrypt, and write.
func (t *TCPTLSTransport) Transmit(r *remote.Remote, p *wire.Packet, completion func(*wire.Packet)) error {
	r.Lock()
	defer r.Unlock()

	if t.session == nil {
		return rerrors.ErrNotConnected
	}
	if err := wire.WritePacket(t.session.Conn, p, r.GetCipher()); err != nil {
		t.metrics.RecordError(err.Error())
		return err
	}
	if completion != nil {
		r.RegisterCompletion(p.RequestID, completion)
	}
	t.metrics.PacketSent()
	t.metrics.BytesSent(int64(p.Header.Length))
	return nil
}

// GetSocket implements spec §4.6's get_socket.
func (t *TCPTLSTransport) GetSocket() uintptr {
	if t.conn == nil {
		return 0
	}
	fd, err := socketFD(t.conn)
	if err != nil {
		return 0
	}
	return fd
}

// Dispatch implements spec §4.5's dispatch loop, including steps 1
// and 4: sched is started before the first poll and stopped (joining
// outstanding work) on every exit path below.
func (t *TCPTLSTransport) Dispatch(ctx context.Context, r *remote.Remote, handler remote.CommandHandler, sched scheduler.Scheduler) error {
	if t.session == nil {
		return rerrors.ErrNotConnected
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("transport: scheduler start: %w", err)
	}
	defer sched.Stop()
	t.commsLastPacket = t.now()

	ticker := time.NewTicker(dispatchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			packet, ok, err := t.pollAndRead(r)
			if err != nil {
				if rerrors.Is(err, rerrors.ErrPeerClosed) {
					return nil
				}
				return err
			}
			if !ok {
				now := t.now()
				if now > t.expirationEnd || now-t.commsLastPacket > t.timeouts.Comms {
					return nil
				}
				continue
			}

			if fn, found := r.ResolveCompletion(packet.RequestID); found {
				fn(packet)
				t.commsLastPacket = t.now()
				continue
			}

			disposition, err := handler.Handle(r, packet)
			if err != nil {
				return err
			}
			t.commsLastPacket = t.now()
			if disposition == remote.Stop {
				return nil
			}
		}
	}
}

// pollAndRead attempts one non-blocking-ish read: it arms a short
// deadline matching the poll cadence, reads one packet if data has
// arrived, and reports ok=false on a plain timeout (spec §4.5 step b/c,
// approximated with a read deadline in place of a separate poll(2)
// call since crypto/tls has no direct poll equivalent).
func (t *TCPTLSTransport) pollAndRead(r *remote.Remote) (*wire.Packet, bool, error) {
	r.Lock()
	defer r.Unlock()

	if err := t.session.Conn.SetReadDeadline(time.Now().Add(dispatchPollInterval)); err != nil {
		return nil, false, err
	}
	packet, err := wire.ReadPacket(t.session.Conn, r.GetCipher())
	if err != nil {
		var ne netError
		if rerrors.As(err, &ne) && ne.Timeout() {
			return nil, false, nil
		}
		t.metrics.RecordError(err.Error())
		return nil, false, err
	}
	t.metrics.PacketReceived()
	t.metrics.BytesReceived(int64(packet.Header.Length))
	return packet, true, nil
}
