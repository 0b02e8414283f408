// Package waitset lets a connection goroutine sleep until its socket becomes
// ready, its wake-up latch is set, or the supervising process goes away.
//
// A Set watches exactly one socket plus two shared conditions:
//   - the Latch: a resettable self-pipe used to interrupt a wait so pending
//     interrupts can be processed
//   - the Supervisor: process-wide liveness of the supervising parent
//
// Waiting is level triggered and has no hidden timeout. A latch that was set
// before Wait is entered makes Wait return immediately.
package waitset

import (
	"errors"
	"os"
)

// Events is a bit set of wait conditions.
type Events uint8

const (
	// SocketReadable is reported when the socket has data or failed.
	SocketReadable Events = 1 << iota
	// SocketWritable is reported when the socket can take data or failed.
	SocketWritable
	// LatchSet is reported when the latch has been set.
	LatchSet
	// SupervisorDeath is reported when the supervisor is gone.
	SupervisorDeath
)

// Has reports whether all bits of o are set in e.
func (e Events) Has(o Events) bool {
	return e&o == o
}

// Supervisor reports whether the supervising process is still around.
type Supervisor interface {
	// Fd returns a descriptor that becomes readable once the supervisor is
	// gone, or -1 if there is none and Lost has to be polled.
	Fd() int

	// Lost reports whether the supervisor is gone.
	Lost() bool
}

// NoSupervisor is used when the server runs standalone.
type NoSupervisor struct{}

// Fd implements Supervisor.
func (NoSupervisor) Fd() int { return -1 }

// Lost implements Supervisor.
func (NoSupervisor) Lost() bool { return false }

// SupervisorFdEnv names the environment variable holding the read end of a
// pipe whose write end is kept open by the supervisor.
const SupervisorFdEnv = "SECURESOCK_SUPERVISOR_FD"

var errUnsupported = errors.New("wait sets are not supported on this platform")

// ParentDeathSignal is the signal the kernel delivers when the parent
// exits, on platforms that support it. Nil elsewhere.
var ParentDeathSignal os.Signal = parentDeathSignal
