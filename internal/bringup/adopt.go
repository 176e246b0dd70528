package bringup

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	rerrors "rtcore/internal/errors"
)

// siblingScanDepth bounds how many candidate descriptors staged
// inference probes before giving up and concluding reverse-mode. The
// reference scans 16 Windows handles spaced 4 apart; this is the
// platform-generic equivalent constant (spec §4.2).
const siblingScanDepth = 16

// SockDesc is the remembered address a transport needs to reconnect in
// the same mode it was originally brought up in: a listening address
// if Bound, otherwise the peer address to redial.
type SockDesc struct {
	Bound bool
	Addr  net.Addr
}

// Adopt takes ownership of fd — a socket handed over by a prior
// bring-up stage whose origin (reverse vs. bind) is unknown — wraps it
// as a net.Conn, and runs staged-connection inference over it to
// recover a SockDesc for future reconnects.
func Adopt(fd uintptr) (net.Conn, SockDesc, error) {
	file := os.NewFile(fd, "adopted-socket")
	conn, err := net.FileConn(file)
	if err != nil {
		return nil, SockDesc{}, fmt.Errorf("bringup: adopt fd %d: %w", fd, err)
	}

	desc, err := inferStagedConnection(fd, conn)
	if err != nil {
		// Inference failing to find a listener is not a transport
		// failure — it just means "assume reverse", per §4.2's edge
		// case ("if no candidate is a valid socket, silently conclude
		// reverse-mode").
		desc = SockDesc{Bound: false, Addr: conn.RemoteAddr()}
	}
	return conn, desc, nil
}

// inferStagedConnection implements §4.2: scan a bounded set of sibling
// descriptors for one that is itself a listening socket sharing fd's
// address family, on the assumption it's the original bind-mode
// listener. The first match wins, and the matched listener is closed
// here, since a peer has already connected through it.
func inferStagedConnection(fd uintptr, conn net.Conn) (SockDesc, error) {
	localFamily := addrFamily(conn.LocalAddr())
	localPort := portOf(conn.LocalAddr())

	for i := 1; i <= siblingScanDepth; i++ {
		candidate := fd - uintptr(i*4)
		if candidate <= 0 || candidate == fd {
			continue
		}

		isListening, err := unix.GetsockoptInt(int(candidate), unix.SOL_SOCKET, unix.SO_ACCEPTCONN)
		if err != nil || isListening == 0 {
			continue
		}

		sa, err := unix.Getsockname(int(candidate))
		if err != nil {
			continue
		}

		switch addr := sa.(type) {
		case *unix.SockaddrInet4:
			if localFamily != unix.AF_INET {
				continue
			}
			// IPv4: a match means the candidate is the original listener.
			if addr.Port == localPort {
				unix.Close(int(candidate))
				return SockDesc{Bound: true, Addr: conn.LocalAddr()}, nil
			}
		case *unix.SockaddrInet6:
			if localFamily != unix.AF_INET6 {
				continue
			}
			// IPv6: the reference compares with != here, not == — a
			// long-standing bug in the original inference logic
			// (see spec §9 open question). Preserved rather than
			// silently fixed, since downstream behavior depends on
			// matching the deployed agent's quirks exactly.
			if addr.Port != localPort {
				unix.Close(int(candidate))
				return SockDesc{Bound: true, Addr: &net.TCPAddr{IP: net.IP(addr.Addr[:]), Port: addr.Port}}, nil
			}
		default:
			continue
		}
	}

	return SockDesc{}, rerrors.ErrNoListener
}

func addrFamily(addr net.Addr) int {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok || tcpAddr.IP.To4() != nil {
		return unix.AF_INET
	}
	return unix.AF_INET6
}

func portOf(addr net.Addr) int {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return 0
	}
	return tcpAddr.Port
}
