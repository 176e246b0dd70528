package bringup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// BindListen opens a listener on port, preferring dual-stack IPv6 and
// falling back to IPv4-only when the v6 socket or its IPV6_V6ONLY
// option can't be set up (per spec §4.1, that failure — not a later
// bind/listen/accept error — is what triggers the fallback). It
// accepts exactly one connection, closes the listener, and returns the
// accepted connection.
func BindListen(ctx context.Context, port uint16) (net.Conn, error) {
	addr := fmt.Sprintf(":%d", port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		var sysErr *os.SyscallError
		if !errors.As(err, &sysErr) || (sysErr.Syscall != "socket" && sysErr.Syscall != "setsockopt") {
			return nil, fmt.Errorf("bringup: bind_listen %s: %w", addr, err)
		}
		ln, err = net.Listen("tcp4", addr)
		if err != nil {
			return nil, fmt.Errorf("bringup: bind_listen %s: %w", addr, err)
		}
	}

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	done := make(chan acceptResult, 1)
	go func() {
		conn, err := ln.Accept()
		done <- acceptResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		ln.Close()
		return nil, ctx.Err()
	case res := <-done:
		ln.Close()
		if res.err != nil {
			return nil, fmt.Errorf("bringup: accept on %s: %w", addr, res.err)
		}
		return res.conn, nil
	}
}
