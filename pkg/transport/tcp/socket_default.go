//go:build !windows
// +build !windows

package tcp

import (
	"fmt"
	"io"
	"net"
	"syscall"

	"dominicbreuker/securesock/pkg/transport"

	"golang.org/x/sys/unix"
)

// Socket performs raw non-blocking I/O on an accepted connection's
// descriptor. It never parks in the Go netpoller: a call that cannot make
// progress returns a *transport.WouldBlockError instead.
type Socket struct {
	conn net.Conn
	rc   syscall.RawConn
	fd   int
}

// NewSocket wraps conn, which must expose its descriptor via syscall.Conn.
// The socket takes ownership of conn.
func NewSocket(conn net.Conn) (*Socket, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, fmt.Errorf("%T does not expose a file descriptor", conn)
	}

	rc, err := sc.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("SyscallConn(): %w", err)
	}

	fd := -1
	if err := rc.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return nil, fmt.Errorf("Control(): %w", err)
	}

	return &Socket{conn: conn, rc: rc, fd: fd}, nil
}

// Read implements transport.Socket.
func (s *Socket) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var (
		n     int
		opErr error
	)
	err := s.rc.Read(func(fd uintptr) bool {
		for {
			n, opErr = unix.Read(int(fd), p)
			if opErr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return 0, transport.ErrClosed
	}

	switch {
	case opErr == unix.EAGAIN || opErr == unix.EWOULDBLOCK:
		return 0, &transport.WouldBlockError{Dir: transport.WaitReadable}
	case opErr != nil:
		return 0, &transport.OpError{Op: "receive", Err: opErr}
	case n == 0:
		return 0, io.EOF
	}

	return n, nil
}

// Write implements transport.Socket.
func (s *Socket) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var (
		n     int
		opErr error
	)
	err := s.rc.Write(func(fd uintptr) bool {
		for {
			n, opErr = unix.Write(int(fd), p)
			if opErr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return 0, transport.ErrClosed
	}

	switch {
	case opErr == unix.EAGAIN || opErr == unix.EWOULDBLOCK:
		return 0, &transport.WouldBlockError{Dir: transport.WaitWritable}
	case opErr != nil:
		return 0, &transport.OpError{Op: "send", Err: opErr}
	}

	return n, nil
}

// Close closes the underlying connection.
func (s *Socket) Close() error {
	return s.conn.Close()
}

// Fd implements transport.Socket.
func (s *Socket) Fd() int {
	return s.fd
}

// RemoteAddr implements transport.Socket.
func (s *Socket) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

var _ transport.Socket = (*Socket)(nil)
