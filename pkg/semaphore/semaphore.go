// Package semaphore limits the number of client connections that are
// served concurrently.
package semaphore

// Slots is a fixed pool of connection slots. Admission never waits: a
// connection arriving while all slots are taken is turned away.
type Slots struct {
	sem chan struct{}
}

// New creates a pool with n free slots.
func New(n int) *Slots {
	sem := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		sem <- struct{}{}
	}
	return &Slots{sem: sem}
}

// TryAcquire takes a slot if one is free and reports whether it did.
// A nil pool admits everything.
func (s *Slots) TryAcquire() bool {
	if s == nil {
		return true
	}

	select {
	case <-s.sem:
		return true
	default:
		return false
	}
}

// Release returns a slot taken by TryAcquire.
// If the pool is nil, this is a no-op.
func (s *Slots) Release() {
	if s == nil {
		return
	}
	s.sem <- struct{}{}
}

// InUse returns the number of slots currently taken.
func (s *Slots) InUse() int {
	if s == nil {
		return 0
	}
	return cap(s.sem) - len(s.sem)
}
