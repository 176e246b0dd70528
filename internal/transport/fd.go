package transport

import (
	"fmt"
	"net"
	"syscall"
)

// socketFD extracts the raw file descriptor backing conn, for
// GetSocket and setNoInherit. Returns an error for connections that aren't backed by a
// real OS socket (e.g. net.Pipe, used only in tests).
func socketFD(conn net.Conn) (uintptr, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return 0, fmt.Errorf("transport: connection has no underlying descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("transport: syscall conn: %w", err)
	}
	var fd uintptr
	ctrlErr := raw.Control(func(f uintptr) { fd = f })
	if ctrlErr != nil {
		return 0, fmt.Errorf("transport: control: %w", ctrlErr)
	}
	return fd, nil
}

// setNoInherit sets the close-on-exec flag on conn's descriptor (spec §5: "sockets set handle_inherit = false so child
// processes spawned by commands do not leak the channel"). Best
// effort: failure to set it is not fatal to bring-up.
func setNoInherit(conn net.Conn) {
	fd, err := socketFD(conn)
	if err != nil {
		return
	}
	syscall.CloseOnExec(int(fd))
}
