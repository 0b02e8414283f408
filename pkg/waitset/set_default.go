//go:build !windows
// +build !windows

package waitset

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Set is the wait set of one connection. It is not safe for concurrent use.
type Set struct {
	sock   int
	events Events
	latch  *Latch
	sup    Supervisor
}

// New creates a wait set for the socket descriptor sock. The latch belongs to
// the connection; the supervisor is shared by the whole process. A nil
// supervisor means NoSupervisor.
func New(sock int, latch *Latch, sup Supervisor) *Set {
	if sup == nil {
		sup = NoSupervisor{}
	}
	return &Set{sock: sock, latch: latch, sup: sup}
}

// Modify replaces the socket interest. Only SocketReadable and
// SocketWritable are honored.
func (s *Set) Modify(events Events) {
	s.events = events & (SocketReadable | SocketWritable)
}

// Latch returns the latch watched by the set.
func (s *Set) Latch() *Latch {
	return s.latch
}

// Wait blocks until at least one condition fires or timeout elapses. A
// negative timeout waits forever. On timeout it returns no events.
func (s *Set) Wait(timeout time.Duration) (Events, error) {
	fds := make([]unix.PollFd, 2, 3)
	fds[0] = unix.PollFd{Fd: int32(s.sock), Events: s.pollEvents()}
	fds[1] = unix.PollFd{Fd: int32(s.latch.Fd()), Events: unix.POLLIN}
	if fd := s.sup.Fd(); fd >= 0 {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		ms := -1
		if timeout >= 0 {
			ms = int(time.Until(deadline).Milliseconds())
			if ms < 0 {
				ms = 0
			}
		}

		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("poll(): %w", err)
		}
		if n == 0 {
			return 0, nil
		}
		return s.collect(fds), nil
	}
}

func (s *Set) pollEvents() int16 {
	var ev int16
	if s.events&SocketReadable != 0 {
		ev |= unix.POLLIN
	}
	if s.events&SocketWritable != 0 {
		ev |= unix.POLLOUT
	}
	return ev
}

func (s *Set) collect(fds []unix.PollFd) Events {
	var ev Events

	re := fds[0].Revents
	failed := re&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0
	if s.events&SocketReadable != 0 && (re&unix.POLLIN != 0 || failed) {
		ev |= SocketReadable
	}
	if s.events&SocketWritable != 0 && (re&unix.POLLOUT != 0 || failed) {
		ev |= SocketWritable
	}

	if fds[1].Revents != 0 {
		ev |= LatchSet
	}

	// Supervisors without a descriptor wake us through the latch.
	if len(fds) > 2 {
		if fds[2].Revents != 0 {
			ev |= SupervisorDeath
		}
	} else if ev&LatchSet != 0 && s.sup.Lost() {
		ev |= SupervisorDeath
	}

	return ev
}
