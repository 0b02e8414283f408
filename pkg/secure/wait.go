package secure

import (
	"fmt"
	"time"

	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/transport"
	"dominicbreuker/securesock/pkg/waitset"
)

// Waiter blocks until a connection's socket is ready in a direction or the
// connection is woken. woken reports that the wake-up came from the latch
// rather than from the socket.
type Waiter interface {
	Wait(dir transport.Direction) (woken bool, err error)
}

// WaitSet is the event multiplexer a Coordinator waits on. *waitset.Set
// implements it.
type WaitSet interface {
	Modify(events waitset.Events)
	Wait(timeout time.Duration) (waitset.Events, error)
}

// Resetter is a latch that can be cleared.
type Resetter interface {
	Reset()
}

// Coordinator implements Waiter on top of a connection's wait set.
type Coordinator struct {
	set    WaitSet
	latch  Resetter
	logger *log.Logger
	exit   func(code int)
}

// NewCoordinator creates a coordinator for one connection. exit is called
// with ExitAdminShutdown when the supervisor is gone.
func NewCoordinator(set WaitSet, latch Resetter, logger *log.Logger, exit func(code int)) *Coordinator {
	return &Coordinator{
		set:    set,
		latch:  latch,
		logger: logger,
		exit:   exit,
	}
}

// Wait points the socket interest at dir and blocks without a timeout.
// Supervisor death takes priority over everything else, then the latch,
// then socket readiness.
func (c *Coordinator) Wait(dir transport.Direction) (bool, error) {
	var interest waitset.Events
	switch dir {
	case transport.WaitReadable:
		interest = waitset.SocketReadable
	case transport.WaitWritable:
		interest = waitset.SocketWritable
	default:
		return false, fmt.Errorf("cannot wait for socket to become %s", dir)
	}
	c.set.Modify(interest)

	for {
		events, err := c.set.Wait(-1)
		if err != nil {
			return false, fmt.Errorf("wait for socket: %w", err)
		}

		if events.Has(waitset.SupervisorDeath) {
			c.logger.ErrorMsg("%s", ErrSupervisorLost)
			if c.exit != nil {
				c.exit(ExitAdminShutdown)
			}
			return false, ErrSupervisorLost
		}

		if events.Has(waitset.LatchSet) {
			if c.latch != nil {
				c.latch.Reset()
			}
			return true, nil
		}

		if events&interest != 0 {
			return false, nil
		}
	}
}

var _ Waiter = (*Coordinator)(nil)
