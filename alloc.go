package stackarena

import (
	"fmt"
	"math"
	"unsafe"
)

// Bound is implemented by every Allocator regardless of its element type.
// It lets handles over different element types be compared with Equal.
type Bound interface {
	Arena() *Arena
}

// Allocator is a copyable handle that sources storage for elements of type T
// from an Arena. It holds only the arena reference, so copying it is free and
// every copy allocates from the same buffer.
//
// Arena memory is not scanned by the garbage collector, so only element
// types without pointers (see HasPointers) are placed in the arena. Storage
// for any other T, and all storage of the zero Allocator, is an ordinary Go
// slice kept reachable until it is deallocated; it never touches the arena
// and is not counted in its metrics. Types implementing NoScanner decide
// for themselves.
type Allocator[T any] struct {
	arena *Arena
}

// NewAllocator returns an Allocator for T bound to a.
func NewAllocator[T any](a *Arena) Allocator[T] {
	return Allocator[T]{arena: a}
}

// Rebind returns an Allocator for U over the same arena as al. Containers use
// it to allocate their internal node types next to the user's elements.
func Rebind[U, T any](al Allocator[T]) Allocator[U] {
	return Allocator[U]{arena: al.arena}
}

// Arena returns the arena the allocator is bound to.
func (al Allocator[T]) Arena() *Arena {
	return al.arena
}

// Capacity returns the capacity of the bound arena, or 0 for the zero Allocator.
func (al Allocator[T]) Capacity() int {
	return al.arena.Capacity()
}

// Allocate returns zeroed storage for count contiguous elements.
// No constructor runs; initializing the elements is the caller's job.
// Allocate(0) returns nil.
func (al Allocator[T]) Allocate(count int) (*T, error) {
	n, err := byteCount[T](count)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	if n == 0 {
		// Zero-sized elements need an address, not storage.
		return new(T), nil
	}

	if al.arena == nil || needsScan[T]() {
		return allocTyped[T](count), nil
	}

	p, err := al.arena.Allocate(n)
	if err != nil {
		return nil, err
	}
	// Reclaimed arena memory still holds old values.
	clear(unsafe.Slice((*byte)(p), n))
	return (*T)(p), nil
}

// Deallocate gives back storage returned by Allocate with the same count.
func (al Allocator[T]) Deallocate(p *T, count int) {
	if p == nil || count <= 0 {
		return
	}
	n, err := byteCount[T](count)
	if err != nil || n == 0 {
		return
	}
	if al.arena == nil || needsScan[T]() {
		freeTyped(unsafe.Pointer(p))
		return
	}
	al.arena.Deallocate(unsafe.Pointer(p), n)
}

// AllocSlice allocates count zeroed elements and returns them as a slice with
// len and cap equal to count. Returns nil if count == 0.
func (al Allocator[T]) AllocSlice(count int) ([]T, error) {
	p, err := al.Allocate(count)
	if p == nil {
		return nil, err
	}
	return unsafe.Slice(p, count), nil
}

// FreeSlice deallocates a slice returned by AllocSlice. The slice may have
// been resliced from its start; its capacity must be unchanged.
func (al Allocator[T]) FreeSlice(s []T) {
	if cap(s) == 0 {
		return
	}
	al.Deallocate(unsafe.SliceData(s), cap(s))
}

// Equal reports whether al and other allocate from the same arena.
func (al Allocator[T]) Equal(other Bound) bool {
	return Equal(al, other)
}

// Equal reports whether two allocator handles are interchangeable: storage
// allocated through one may be deallocated through the other. That holds iff
// both are bound to the identical arena, which also fixes the capacity;
// arena contents are never compared.
func Equal(lhs, rhs Bound) bool {
	return arenaOf(lhs) == arenaOf(rhs)
}

func arenaOf(b Bound) *Arena {
	if b == nil {
		return nil
	}
	return b.Arena()
}

// Alloc allocates a single zeroed T from a.
func Alloc[T any](a *Arena) (*T, error) {
	return NewAllocator[T](a).Allocate(1)
}

// Free gives back a T returned by Alloc.
func Free[T any](a *Arena, p *T) {
	NewAllocator[T](a).Deallocate(p, 1)
}

// byteCount converts an element count to bytes, failing on overflow.
func byteCount[T any](count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: %d elements", ErrInvalidSize, count)
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size > 0 && count > math.MaxInt/size {
		return 0, fmt.Errorf("%w: %d elements of %d bytes", ErrSizeOverflow, count, size)
	}
	return count * size, nil
}
