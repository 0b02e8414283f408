// Package transport defines the pieces shared by securesock's transports:
// readiness directions, the would-block signal, and the interfaces between
// a raw socket, the secure transport provider and its sessions.
//
// Socket and Session I/O never blocks. When an operation cannot make
// progress it fails with a *WouldBlockError naming the readiness direction
// the caller has to wait for before retrying. For a raw socket that is
// always the direction of the call; for a TLS session it can be the
// opposite one, e.g. a Read that first needs to flush handshake data.
//
// Implementations:
//   - tcp.Socket: raw non-blocking TCP socket
//   - ssl.Provider: crypto/tls based secure transport provider
package transport

import (
	"errors"
	"fmt"
	"net"
)

// Direction is the socket readiness a retry has to wait for.
type Direction uint8

const (
	// WaitNone means no readiness is required.
	WaitNone Direction = iota
	// WaitReadable waits until the socket has data to read.
	WaitReadable
	// WaitWritable waits until the socket can accept data.
	WaitWritable
)

func (d Direction) String() string {
	switch d {
	case WaitReadable:
		return "readable"
	case WaitWritable:
		return "writable"
	default:
		return "none"
	}
}

// WouldBlockError reports that an operation could not complete without
// blocking. It implements net.Error with Temporary() == true so that
// crypto/tls keeps the connection usable after it.
type WouldBlockError struct {
	Dir Direction
}

func (e *WouldBlockError) Error() string {
	return fmt.Sprintf("operation would block (waiting for socket to become %s)", e.Dir)
}

// Timeout implements net.Error.
func (e *WouldBlockError) Timeout() bool { return false }

// Temporary implements net.Error.
func (e *WouldBlockError) Temporary() bool { return true }

var _ net.Error = (*WouldBlockError)(nil)

// IsWouldBlock reports whether err is a would-block condition.
func IsWouldBlock(err error) bool {
	var wb *WouldBlockError
	return errors.As(err, &wb)
}

// DirectionOf returns the readiness direction carried by a would-block
// error, or WaitNone for any other error.
func DirectionOf(err error) Direction {
	var wb *WouldBlockError
	if errors.As(err, &wb) {
		return wb.Dir
	}
	return WaitNone
}

// ErrClosed is returned for I/O on a socket that has been closed locally.
var ErrClosed = errors.New("transport closed")

// OpError is a non-retryable socket failure. The connection is unusable
// afterwards and must be closed by its owner.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Op == "send" {
		return fmt.Sprintf("could not send data to client: %s", e.Err)
	}
	return fmt.Sprintf("could not %s data from client: %s", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Socket is a raw, non-blocking, pollable client socket.
type Socket interface {
	// Read receives at most len(p) bytes. It returns io.EOF when the peer
	// closed the connection and *WouldBlockError{WaitReadable} when no data
	// is available.
	Read(p []byte) (int, error)

	// Write sends at most len(p) bytes and may transfer fewer. It returns
	// *WouldBlockError{WaitWritable} when the send buffer is full.
	Write(p []byte) (int, error)

	// Close closes the socket.
	Close() error

	// Fd returns the descriptor to poll for readiness.
	Fd() int

	// RemoteAddr returns the peer's address.
	RemoteAddr() net.Addr
}

// WaitFunc blocks until the socket is ready in the given direction. It is
// handed to Provider.Open so the handshake can wait like regular I/O does.
type WaitFunc func(dir Direction) error

// Session is the per-connection state of an established secure session.
// It is owned by the provider that opened it.
type Session interface {
	// Read decrypts at most len(p) bytes of application data.
	Read(p []byte) (int, error)

	// Write encrypts and sends p. After a *WouldBlockError the call has to
	// be repeated with the same buffer.
	Write(p []byte) (int, error)

	// Close sends a close notification on a best-effort basis and releases
	// the session. It does not close the socket.
	Close() error

	// PeerName returns the common name of the client certificate, or ""
	// if the client did not present one.
	PeerName() string
}

// Provider is the secure transport implementation. Init and Destroy manage
// its process-wide state; Open negotiates a session on a socket.
type Provider interface {
	// Init (re)loads the provider configuration. On failure the previous
	// configuration stays in effect.
	Init(isServerStart bool) error

	// Destroy releases the provider configuration. Safe to call repeatedly.
	Destroy()

	// LoadedVerifyLocations reports whether a root certificate store for
	// client verification has been loaded.
	LoadedVerifyLocations() bool

	// Open performs the server side handshake on sock.
	Open(sock Socket, wait WaitFunc) (Session, error)
}
