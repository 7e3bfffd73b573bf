package stackarena

import (
	"errors"
	"fmt"

	"github.com/pavanmanishd/stackarena/internal/mmap"
)

var (
	// ErrAllocationFailed is the root of every allocation failure. Match it
	// with errors.Is to handle out-of-memory and size overflow alike.
	ErrAllocationFailed = errors.New("stackarena: allocation failed")
	// ErrOutOfMemory is returned when the upstream allocator cannot serve a
	// request that did not fit into the arena.
	ErrOutOfMemory = fmt.Errorf("%w: out of memory", ErrAllocationFailed)
	// ErrSizeOverflow is returned when an element count times the element
	// size does not fit into an int.
	ErrSizeOverflow = fmt.Errorf("%w: size overflow", ErrAllocationFailed)

	// ErrInvalidSize is returned for negative byte or element counts.
	ErrInvalidSize = errors.New("stackarena: invalid size")
	// ErrInvalidAlignment is returned by New when WithAlignment is not a
	// positive power of two.
	ErrInvalidAlignment = errors.New("stackarena: alignment must be a positive power of two")
	// ErrUnsupported is returned by mmap-backed components on platforms
	// without anonymous mappings.
	ErrUnsupported = mmap.ErrUnsupported
)

// outOfMemory wraps an upstream failure so that it matches ErrOutOfMemory
// unless it already is an allocation failure.
func outOfMemory(n int, err error) error {
	if errors.Is(err, ErrAllocationFailed) {
		return err
	}
	return fmt.Errorf("%w: %d bytes: %w", ErrOutOfMemory, n, err)
}
