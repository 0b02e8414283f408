// Package server accepts client connections and runs a handler on each of
// them over a secure.Conn.
//
// Per connection the server builds the raw socket, a latch registered with
// the interrupt hub, a wait set watching socket, latch and supervisor, and
// the coordinator the connection waits through. With SSL enabled the
// connection is upgraded with Open before the handler runs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/format"
	"dominicbreuker/securesock/pkg/interrupt"
	"dominicbreuker/securesock/pkg/secure"
	"dominicbreuker/securesock/pkg/semaphore"
	"dominicbreuker/securesock/pkg/transport/tcp"
	"dominicbreuker/securesock/pkg/waitset"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// Session is a connection being served.
type Session struct {
	ID         string
	Conn       *secure.Conn
	Interrupts *interrupt.Processor
	Started    time.Time
}

// Handler serves one session. The connection is closed when it returns.
type Handler func(sess *Session) error

// Server is a securesock server.
type Server struct {
	cfg        *config.Shared
	lifecycle  *secure.Lifecycle
	hub        *interrupt.Hub
	supervisor waitset.Supervisor
	handler    Handler

	sessions *xsync.MapOf[string, *Session]
	ready    chan net.Addr
}

// New creates a server. lifecycle must have been initialized when
// cfg.SSL is set. supervisor may be nil.
func New(cfg *config.Shared, lifecycle *secure.Lifecycle, hub *interrupt.Hub, supervisor waitset.Supervisor, handler Handler) *Server {
	return &Server{
		cfg:        cfg,
		lifecycle:  lifecycle,
		hub:        hub,
		supervisor: supervisor,
		handler:    handler,
		sessions:   xsync.NewMapOf[string, *Session](),
		ready:      make(chan net.Addr, 1),
	}
}

// Ready delivers the listening address once the server accepts
// connections.
func (s *Server) Ready() <-chan net.Addr {
	return s.ready
}

// Sessions returns the number of sessions being served.
func (s *Server) Sessions() int {
	return s.sessions.Size()
}

// Serve listens and serves until ctx is cancelled. Cancellation requests
// termination of all open sessions; Serve returns once they are gone.
func (s *Server) Serve(ctx context.Context) error {
	addr := format.Addr(s.cfg.Host, s.cfg.Port)
	l, err := tcp.NewListener(addr, semaphore.New(s.cfg.MaxConnections), s.cfg.Deps, s.cfg.Logger)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, s.hub.RequestTermination)
	defer stop()

	s.cfg.Logger.InfoMsg("Listening on %s (ssl: %t)", l.Addr(), s.cfg.SSL)
	s.ready <- l.Addr()

	return l.Serve(ctx, s.handleConn)
}

func (s *Server) handleConn(nc net.Conn) {
	logger := s.cfg.Logger
	remote := nc.RemoteAddr()

	sock, err := tcp.NewSocket(nc)
	if err != nil {
		logger.ErrorMsg("Handling %s: %s", remote, err)
		return
	}

	latch, err := waitset.NewLatch()
	if err != nil {
		logger.ErrorMsg("Handling %s: creating latch: %s", remote, err)
		return
	}
	defer latch.Close()

	_, unregister := s.hub.Register(latch)
	defer unregister()

	set := waitset.New(sock.Fd(), latch, s.supervisor)
	proc := interrupt.NewProcessor(s.hub, latch)

	opts := secure.Options{
		Waiter:     secure.NewCoordinator(set, latch, logger, config.GetExitFunc(s.cfg.Deps)),
		Interrupts: proc,
		NoBlock:    s.cfg.NoBlock,
		Logger:     logger,
	}
	if s.cfg.SSL {
		opts.Provider = s.lifecycle.Provider()
	}

	conn := secure.NewConn(sock, opts)
	defer conn.Close()

	if s.cfg.SSL {
		if err := conn.Open(); err != nil {
			logger.ErrorMsg("Handling %s: %s", remote, err)
			return
		}
	}

	sess := &Session{
		ID:         uuid.NewString(),
		Conn:       conn,
		Interrupts: proc,
		Started:    time.Now(),
	}
	s.sessions.Store(sess.ID, sess)
	defer s.sessions.Delete(sess.ID)

	logger.InfoMsg("New connection from %s (session %s)", remote, sess.ID)
	defer func() {
		logger.InfoMsg("Connection from %s closed after %s", remote, time.Since(sess.Started).Round(time.Millisecond))
	}()

	err = s.handler(sess)
	switch {
	case err == nil:
	case errors.Is(err, interrupt.ErrAdminShutdown):
		logger.InfoMsg("Session %s: %s", sess.ID, err)
	default:
		logger.ErrorMsg("Handling %s: %s", remote, err)
	}
}

// Run initializes the secure transport, serves until ctx is done and
// destroys the transport state afterwards.
func Run(ctx context.Context, cfg *config.Shared, lifecycle *secure.Lifecycle, hub *interrupt.Hub, supervisor waitset.Supervisor, handler Handler) error {
	if err := lifecycle.Initialize(true); err != nil {
		return err
	}
	defer lifecycle.Destroy()

	if cfg.SSL && !lifecycle.LoadedVerifyLocations() {
		cfg.Logger.VerboseMsg("No root certificate file configured, client certificates are not requested")
	}

	if err := New(cfg, lifecycle, hub, supervisor, handler).Serve(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
