package bringup

import (
	"errors"
	"io"
	"net"
	"time"

	"rtcore/util"
)

// flushReadSize is the chunk size used to drain stager leftovers.
const flushReadSize = 4096

// Flush performs the bounded pre-handshake read drain of §4.7: read
// whatever the stager already pushed onto the wire before the TLS
// handshake begins, so it doesn't get interpreted as TLS record data.
// It stops on a 1-second read timeout with nothing pending, or on the
// peer closing the connection.
func Flush(conn net.Conn) error {
	bufPtr := util.GetBuf()
	defer util.PutBuf(bufPtr)
	buf := (*bufPtr)[:flushReadSize]
	for {
		if err := conn.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			if errors.Is(err, io.ErrClosedPipe) {
				return nil // the peer has already closed; nothing left to drain
			}
			return err
		}
		n, err := conn.Read(buf)
		if errors.Is(err, io.EOF) {
			// The peer closed the connection; clearing the deadline may
			// fail on a closed connection and is of no further use.
			_ = conn.SetReadDeadline(time.Time{})
			return nil
		}
		if n == 0 || err != nil {
			break
		}
	}
	return conn.SetReadDeadline(time.Time{})
}
