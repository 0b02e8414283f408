// Package secure implements the connection-level transport used by the
// server: reads and writes that transparently go through a TLS session
// once one was negotiated, with blocking semantics built from non-blocking
// attempts and waits on the connection's wait set.
package secure

import (
	"errors"
	"fmt"
	"net"

	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/transport"
)

// Interrupts processes interrupts that are pending for a connection.
// blocking is true when called from a wait that was woken by the latch.
type Interrupts interface {
	ProcessPending(blocking bool) error
}

// Options configures a Conn.
type Options struct {
	// Provider negotiates TLS sessions. nil makes the connection
	// plaintext-only.
	Provider transport.Provider

	// Waiter is used whenever a blocking operation cannot make progress.
	Waiter Waiter

	// Interrupts is consulted after each operation and after latch
	// wake-ups. Optional.
	Interrupts Interrupts

	// NoBlock makes Read and Write return would-block errors instead of
	// waiting.
	NoBlock bool

	Logger *log.Logger
}

// Conn is a client connection that is plaintext until Open negotiates a
// secure session on it.
type Conn struct {
	sock       transport.Socket
	provider   transport.Provider
	waiter     Waiter
	interrupts Interrupts
	logger     *log.Logger

	session   transport.Session
	encrypted bool
	noblock   bool
}

// NewConn wraps sock. The Conn owns the socket from now on.
func NewConn(sock transport.Socket, opts Options) *Conn {
	return &Conn{
		sock:       sock,
		provider:   opts.Provider,
		waiter:     opts.Waiter,
		interrupts: opts.Interrupts,
		logger:     opts.Logger,
		noblock:    opts.NoBlock,
	}
}

// SetNoBlock switches between blocking and non-blocking mode.
func (c *Conn) SetNoBlock(noblock bool) {
	c.noblock = noblock
}

// NoBlock reports whether the connection is in non-blocking mode.
func (c *Conn) NoBlock() bool {
	return c.noblock
}

// Encrypted reports whether a secure session is active.
func (c *Conn) Encrypted() bool {
	return c.encrypted
}

// PeerName returns the client certificate's common name, or "" when the
// connection is not encrypted or the client sent no certificate.
func (c *Conn) PeerName() string {
	if !c.encrypted {
		return ""
	}
	return c.session.PeerName()
}

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.sock.RemoteAddr()
}

// Open negotiates a secure session. Handshake waits go through the same
// waiter as regular I/O, regardless of the blocking mode.
func (c *Conn) Open() error {
	if c.provider == nil {
		return ErrSSLNotSupported
	}
	if c.encrypted {
		return nil
	}

	session, err := c.provider.Open(c.sock, c.wait)
	if err != nil {
		return fmt.Errorf("could not accept SSL connection: %w", err)
	}

	c.session = session
	c.encrypted = true

	peer := session.PeerName()
	if peer == "" {
		peer = "(anonymous)"
	}
	c.logger.VerboseMsg("SSL connection from %s established, client certificate: %s", c.sock.RemoteAddr(), peer)
	return nil
}

// Read reads at most len(p) bytes. In blocking mode it only returns once
// data arrived, the peer closed the connection (io.EOF) or a
// non-retryable error occurred.
func (c *Conn) Read(p []byte) (int, error) {
	var (
		n   int
		err error
	)

	for {
		if c.encrypted {
			n, err = c.session.Read(p)
		} else {
			n, err = c.sock.Read(p)
		}

		if !transport.IsWouldBlock(err) || c.noblock {
			break
		}

		dir := transport.WaitReadable
		if c.encrypted {
			dir = transport.DirectionOf(err)
		}
		if err = c.wait(dir); err != nil {
			n = 0
			break
		}
	}

	return c.complete(n, err)
}

// Write writes p and returns the number of bytes accepted, which may be
// less than len(p).
func (c *Conn) Write(p []byte) (int, error) {
	var (
		n   int
		err error
	)

	for {
		if c.encrypted {
			n, err = c.session.Write(p)
		} else {
			n, err = c.sock.Write(p)
		}

		if !transport.IsWouldBlock(err) || c.noblock {
			break
		}

		dir := transport.WaitWritable
		if c.encrypted {
			dir = transport.DirectionOf(err)
		}
		if err = c.wait(dir); err != nil {
			n = 0
			break
		}
	}

	return c.complete(n, err)
}

// Close ends the secure session, if any, and closes the socket.
func (c *Conn) Close() error {
	var errs []error
	if c.encrypted {
		errs = append(errs, c.session.Close())
		c.session = nil
		c.encrypted = false
	}
	errs = append(errs, c.sock.Close())
	return errors.Join(errs...)
}

func (c *Conn) wait(dir transport.Direction) error {
	if c.waiter == nil {
		return errNoWaiter
	}

	woken, err := c.waiter.Wait(dir)
	if err != nil {
		return err
	}

	if woken && c.interrupts != nil {
		if err := c.interrupts.ProcessPending(true); err != nil {
			return err
		}
	}
	return nil
}

// complete runs non-blocking interrupt processing once per call. Its error
// only surfaces when the I/O itself succeeded.
func (c *Conn) complete(n int, err error) (int, error) {
	if c.interrupts == nil {
		return n, err
	}

	perr := c.interrupts.ProcessPending(false)
	if err == nil && perr != nil {
		return n, perr
	}
	return n, err
}
