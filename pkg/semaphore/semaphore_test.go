package semaphore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Parallel()

	s := New(5)
	assert.Equal(t, 5, cap(s.sem))
	assert.Equal(t, 5, len(s.sem))
	assert.Equal(t, 0, s.InUse())
}

func TestTryAcquireRelease(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		capacity int
	}{
		{"capacity-1", 1},
		{"capacity-5", 5},
		{"capacity-100", 100},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := New(tc.capacity)
			for i := 0; i < tc.capacity; i++ {
				assert.True(t, s.TryAcquire(), "slot %d", i)
			}
			assert.False(t, s.TryAcquire(), "pool should be exhausted")
			assert.Equal(t, tc.capacity, s.InUse())

			for i := 0; i < tc.capacity; i++ {
				s.Release()
			}
			assert.Equal(t, 0, s.InUse())
			assert.True(t, s.TryAcquire())
		})
	}
}

func TestConcurrentAdmission(t *testing.T) {
	t.Parallel()

	const capacity = 10
	s := New(capacity)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryAcquire() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, admitted)
}

func TestNilSlots(t *testing.T) {
	t.Parallel()

	var s *Slots
	assert.True(t, s.TryAcquire())
	assert.NotPanics(t, s.Release)
	assert.Equal(t, 0, s.InUse())
}
