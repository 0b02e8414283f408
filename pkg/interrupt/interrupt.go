// Package interrupt tracks process-wide interrupt requests and delivers
// them to blocked connections.
//
// Every connection owns a waitset.Latch and registers it with the Hub. A
// termination request sets a flag and wakes every registered latch; the
// connection's Processor then turns the flag into ErrAdminShutdown at the
// next point where it is safe to act on it.
package interrupt

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// ErrAdminShutdown aborts a connection whose server is shutting down.
var ErrAdminShutdown = errors.New("terminating connection due to administrator command")

// Waker is anything that can be woken, typically a *waitset.Latch.
type Waker interface {
	Set()
}

// Hub fans interrupt requests out to all registered connections.
type Hub struct {
	latches     *xsync.MapOf[string, Waker]
	terminating atomic.Bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{latches: xsync.NewMapOf[string, Waker]()}
}

// Register adds w under a new id and returns a function removing it. When
// termination was already requested, w is set right away.
func (h *Hub) Register(w Waker) (id string, unregister func()) {
	id = uuid.NewString()
	h.latches.Store(id, w)
	if h.terminating.Load() {
		w.Set()
	}
	return id, func() { h.latches.Delete(id) }
}

// Len returns the number of registered wakers.
func (h *Hub) Len() int {
	return h.latches.Size()
}

// Wake sets every registered latch without recording a request. Blocked
// waiters re-check their supervisor and interrupt state.
func (h *Hub) Wake() {
	h.latches.Range(func(_ string, w Waker) bool {
		w.Set()
		return true
	})
}

// RequestTermination marks the process as shutting down and wakes every
// connection.
func (h *Hub) RequestTermination() {
	h.terminating.Store(true)
	h.Wake()
}

// Terminating reports whether termination was requested.
func (h *Hub) Terminating() bool {
	return h.terminating.Load()
}

// Processor evaluates pending interrupts for one connection.
type Processor struct {
	hub   *Hub
	latch Waker
}

// NewProcessor binds a processor to the hub and the connection's latch.
// A nil hub never reports an interrupt.
func NewProcessor(hub *Hub, latch Waker) *Processor {
	return &Processor{hub: hub, latch: latch}
}

// ProcessPending handles interrupts that arrived during or after socket
// I/O. In blocking mode, i.e. from inside a wait, a termination request
// aborts the operation with ErrAdminShutdown. Otherwise the request stays
// pending: the latch is set again so that the next wait returns at once
// and the request is handled there or by Check.
func (p *Processor) ProcessPending(blocking bool) error {
	if p == nil || p.hub == nil || !p.hub.Terminating() {
		return nil
	}

	if blocking {
		return ErrAdminShutdown
	}

	if p.latch != nil {
		p.latch.Set()
	}
	return nil
}

// Check returns ErrAdminShutdown once termination was requested. Handlers
// call it between protocol messages.
func (p *Processor) Check() error {
	if p != nil && p.hub != nil && p.hub.Terminating() {
		return ErrAdminShutdown
	}
	return nil
}
