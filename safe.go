package stackarena

import (
	"sync"
	"unsafe"
)

// SafeArena is a mutex-protected wrapper around Arena for concurrent access.
// Every call serializes on one lock, so a SafeArena under contention loses
// most of what makes an arena fast; prefer one Arena per goroutine.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a thread-safe arena holding capacity bytes.
// If capacity <= 0, DefaultCapacity is used.
func NewSafeArena(capacity int, opts ...Option) (*SafeArena, error) {
	a, err := New(capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &SafeArena{a: a}, nil
}

// Allocate thread-safely allocates n bytes.
func (s *SafeArena) Allocate(n int) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(n)
}

// Deallocate thread-safely gives back a block obtained from Allocate.
func (s *SafeArena) Deallocate(p unsafe.Pointer, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Deallocate(p, n)
}

// AllocBytes thread-safely allocates n bytes and returns them as a slice.
func (s *SafeArena) AllocBytes(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocBytes(n)
}

// FreeBytes thread-safely deallocates a slice returned by AllocBytes.
func (s *SafeArena) FreeBytes(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.FreeBytes(b)
}

// With runs fn with exclusive access to the underlying arena. Allocators
// bound to that arena may be used inside fn only.
func (s *SafeArena) With(fn func(a *Arena)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.a)
}

// Used thread-safely returns the cursor offset.
func (s *SafeArena) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Used()
}

// Available thread-safely returns the number of free buffer bytes.
func (s *SafeArena) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Available()
}

// Reset thread-safely moves the cursor back to the start of the buffer.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release thread-safely drops the buffer and makes the arena unusable.
func (s *SafeArena) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Release()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
