package stackarena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeArenaConcurrent(t *testing.T) {
	s, err := NewSafeArena(1 << 20)
	require.NoError(t, err)
	defer s.Release()

	const (
		goroutines = 10
		perG       = 100
	)

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perG {
				b, err := s.AllocBytes(32)
				if !assert.NoError(t, err) {
					return
				}
				for j := range b {
					b[j] = byte(g + i)
				}
				for j := range b {
					if b[j] != byte(g+i) {
						t.Errorf("goroutine %d: block overwritten", g)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perG*32, s.Used())
	assert.Equal(t, uint64(goroutines*perG), s.Metrics().LocalAllocs)
	assert.Equal(t, 1<<20-goroutines*perG*32, s.Available())
}

func TestSafeArenaWith(t *testing.T) {
	s, err := NewSafeArena(1024)
	require.NoError(t, err)
	defer s.Release()

	s.With(func(a *Arena) {
		al := NewAllocator[int64](a)
		p, err := al.Allocate(4)
		require.NoError(t, err)
		assert.Equal(t, 32, a.Used())
		al.Deallocate(p, 4)
	})
	assert.Equal(t, 0, s.Used())

	p, err := s.Allocate(100)
	require.NoError(t, err)
	s.Deallocate(p, 100)
	assert.Equal(t, 0, s.Used())

	b, err := s.AllocBytes(10)
	require.NoError(t, err)
	s.FreeBytes(b)
	assert.Equal(t, 0, s.Used())

	_, err = s.AllocBytes(64)
	require.NoError(t, err)
	s.Reset()
	assert.Equal(t, 0, s.Used())
}

func TestSafeArenaRelease(t *testing.T) {
	s, err := NewSafeArena(1024)
	require.NoError(t, err)

	require.NoError(t, s.Release())
	assert.Panics(t, func() { _, _ = s.AllocBytes(8) })
}

func TestNewSafeArenaInvalidOptions(t *testing.T) {
	_, err := NewSafeArena(1024, WithAlignment(3))
	assert.ErrorIs(t, err, ErrInvalidAlignment)
}
