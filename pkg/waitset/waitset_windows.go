//go:build windows
// +build windows

package waitset

import (
	"os"
	"time"
)

var parentDeathSignal os.Signal

// Latch is unavailable on Windows.
type Latch struct{}

// NewLatch always fails on Windows.
func NewLatch() (*Latch, error) { return nil, errUnsupported }

// Set is a no-op.
func (l *Latch) Set() {}

// Reset is a no-op.
func (l *Latch) Reset() {}

// IsSet always reports false.
func (l *Latch) IsSet() bool { return false }

// Fd returns -1.
func (l *Latch) Fd() int { return -1 }

// Close is a no-op.
func (l *Latch) Close() error { return nil }

// Set is unavailable on Windows.
type Set struct {
	latch *Latch
}

// New returns a set whose Wait always fails.
func New(sock int, latch *Latch, sup Supervisor) *Set { return &Set{latch: latch} }

// Modify is a no-op.
func (s *Set) Modify(events Events) {}

// Latch returns the latch watched by the set.
func (s *Set) Latch() *Latch { return s.latch }

// Wait always fails on Windows.
func (s *Set) Wait(timeout time.Duration) (Events, error) { return 0, errUnsupported }

// NewParentSupervisor always fails on Windows.
func NewParentSupervisor() (Supervisor, error) { return nil, errUnsupported }

// PipeSupervisorFromEnv always fails on Windows.
func PipeSupervisorFromEnv() (Supervisor, error) { return nil, errUnsupported }
