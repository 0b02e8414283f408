package ssl

import (
	"net"
	"time"

	"dominicbreuker/securesock/pkg/transport"
)

// sockIO presents a non-blocking transport.Socket as the net.Conn that
// crypto/tls runs on.
//
// Writes never fail: records are queued and only sent by flush. Read
// flushes the queue before receiving, so a read that cannot proceed
// because the peer is not draining our output reports WaitWritable.
// Would-block errors are returned unwrapped; crypto/tls only keeps a
// connection usable after an error that is a temporary net.Error.
//
// While wait is set (during the handshake) would-block conditions are
// waited out instead of returned.
type sockIO struct {
	sock transport.Socket
	out  []byte
	wait transport.WaitFunc
}

func (s *sockIO) Read(p []byte) (int, error) {
	if err := s.flush(); err != nil {
		return 0, err
	}

	for {
		n, err := s.sock.Read(p)
		if s.wait == nil || !transport.IsWouldBlock(err) {
			return n, err
		}
		if err := s.wait(transport.DirectionOf(err)); err != nil {
			return 0, err
		}
	}
}

func (s *sockIO) Write(p []byte) (int, error) {
	s.out = append(s.out, p...)
	return len(p), nil
}

// pending reports whether queued output is waiting to be sent.
func (s *sockIO) pending() bool {
	return len(s.out) > 0
}

func (s *sockIO) flush() error {
	for len(s.out) > 0 {
		n, err := s.sock.Write(s.out)
		s.out = s.out[n:]
		if err == nil {
			continue
		}
		if s.wait == nil || !transport.IsWouldBlock(err) {
			return err
		}
		if err := s.wait(transport.DirectionOf(err)); err != nil {
			return err
		}
	}
	s.out = nil
	return nil
}

// Close sends what is queued if that is possible without blocking. The
// socket stays open; it belongs to the connection.
func (s *sockIO) Close() error {
	s.wait = nil
	if err := s.flush(); err != nil && !transport.IsWouldBlock(err) {
		return err
	}
	return nil
}

func (s *sockIO) LocalAddr() net.Addr  { return nil }
func (s *sockIO) RemoteAddr() net.Addr { return s.sock.RemoteAddr() }

// Deadlines do not apply: nothing in sockIO blocks on its own.
func (s *sockIO) SetDeadline(time.Time) error      { return nil }
func (s *sockIO) SetReadDeadline(time.Time) error  { return nil }
func (s *sockIO) SetWriteDeadline(time.Time) error { return nil }

var _ net.Conn = (*sockIO)(nil)
