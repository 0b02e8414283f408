package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/semaphore"
)

// TooManyClientsMsg is sent to a client that connects while all slots are
// taken, before the connection is closed.
const TooManyClientsMsg = "sorry, too many clients already\n"

// Handler serves one accepted connection. The connection is closed by the
// listener when the handler returns.
type Handler func(conn net.Conn)

// Listener accepts TCP connections and hands each one to a handler running
// in its own goroutine, as long as a connection slot is available.
type Listener struct {
	nl     net.Listener
	slots  *semaphore.Slots
	logger *log.Logger

	wg sync.WaitGroup
}

// NewListener listens on addr. slots may be nil for an unbounded listener.
func NewListener(addr string, slots *semaphore.Slots, deps *config.Dependencies, logger *log.Logger) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %s", addr, err)
	}

	listenFn := config.GetTCPListenerFunc(deps)
	nl, err := listenFn("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen(tcp, %s): %s", addr, err)
	}

	return &Listener{
		nl:     nl,
		slots:  slots,
		logger: logger,
	}, nil
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr {
	return l.nl.Addr()
}

// Serve accepts connections until ctx is cancelled or the listener fails.
// It returns nil after a cancellation and waits for running handlers.
func (l *Listener) Serve(ctx context.Context, handle Handler) error {
	stop := context.AfterFunc(ctx, func() { l.nl.Close() })
	defer stop()
	defer l.wg.Wait()

	for {
		conn, err := l.nl.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("Accept(): %s", err)
		}

		if !l.slots.TryAcquire() {
			l.logger.WarnMsg("Rejecting connection from %s: too many clients", conn.RemoteAddr())
			conn.Write([]byte(TooManyClientsMsg))
			conn.Close()
			continue
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			defer l.slots.Release()
			defer conn.Close()

			l.logger.VerboseMsg("New TCP connection from %s", conn.RemoteAddr())
			handle(conn)
		}()
	}
}

// Close stops accepting connections.
func (l *Listener) Close() error {
	return l.nl.Close()
}
