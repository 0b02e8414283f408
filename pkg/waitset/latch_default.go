//go:build !windows
// +build !windows

package waitset

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Latch is a self-pipe. Set may be called from any goroutine; Reset and
// waiting belong to the goroutine owning the connection.
type Latch struct {
	mu     sync.RWMutex
	closed bool
	r, w   int
}

// NewLatch creates an unset latch.
func NewLatch() (*Latch, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, fmt.Errorf("pipe(): %w", err)
	}

	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return nil, fmt.Errorf("unix.SetNonblock(%d): %w", fd, err)
		}
	}

	return &Latch{r: p[0], w: p[1]}, nil
}

// Set wakes up a current or future Wait on this latch.
func (l *Latch) Set() {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return
	}
	// A full pipe is already set, so EAGAIN is fine.
	_, _ = unix.Write(l.w, []byte{0})
}

// Reset clears the latch. Callers must check for pending work after Reset,
// not before, so that a concurrent Set is never missed.
func (l *Latch) Reset() {
	var buf [64]byte
	for {
		n, err := unix.Read(l.r, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil || n < len(buf) {
			return
		}
	}
}

// IsSet reports whether the latch is currently set.
func (l *Latch) IsSet() bool {
	fds := []unix.PollFd{{Fd: int32(l.r), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	return err == nil && n > 0
}

// Fd returns the descriptor that is readable while the latch is set.
func (l *Latch) Fd() int {
	return l.r
}

// Close releases the pipe. Set becomes a no-op.
func (l *Latch) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	err := unix.Close(l.r)
	if werr := unix.Close(l.w); err == nil {
		err = werr
	}
	return err
}
