package seq

import (
	"iter"

	"github.com/pavanmanishd/stackarena"
)

// Vector is a growable sequence backed by a single allocator block. Element
// types holding pointers are stored in Go heap memory rather than the arena,
// see stackarena.Allocator. The zero Vector is empty and allocates from the
// Go heap.
type Vector[T any] struct {
	alloc stackarena.Allocator[T]
	data  []T // len is the element count, cap the allocated block
}

// NewVector returns an empty Vector drawing storage from alloc.
func NewVector[T any](alloc stackarena.Allocator[T]) *Vector[T] {
	return &Vector[T]{alloc: alloc}
}

// Allocator returns the allocator the vector uses.
func (v *Vector[T]) Allocator() stackarena.Allocator[T] {
	return v.alloc
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int {
	return len(v.data)
}

// Cap returns the number of elements the current block can hold.
func (v *Vector[T]) Cap() int {
	return cap(v.data)
}

// At returns the element at index i. It panics if i is out of range.
func (v *Vector[T]) At(i int) T {
	return v.data[i]
}

// Set replaces the element at index i. It panics if i is out of range.
func (v *Vector[T]) Set(i int, x T) {
	v.data[i] = x
}

// Push appends x, growing the block if it is full.
func (v *Vector[T]) Push(x T) error {
	if len(v.data) == cap(v.data) {
		if err := v.realloc(max(2*cap(v.data), 1)); err != nil {
			return err
		}
	}
	v.data = append(v.data, x)
	return nil
}

// Pop removes and returns the last element.
func (v *Vector[T]) Pop() (T, bool) {
	var zero T
	if len(v.data) == 0 {
		return zero, false
	}
	last := len(v.data) - 1
	x := v.data[last]
	v.data[last] = zero
	v.data = v.data[:last]
	return x, true
}

// Reserve makes room for at least n elements without further growth.
func (v *Vector[T]) Reserve(n int) error {
	if n <= cap(v.data) {
		return nil
	}
	return v.realloc(n)
}

// Clear removes all elements but keeps the block.
func (v *Vector[T]) Clear() {
	clear(v.data)
	v.data = v.data[:0]
}

// Release removes all elements and gives the block back to the allocator.
func (v *Vector[T]) Release() {
	v.alloc.FreeSlice(v.data)
	v.data = nil
}

// Slice returns the elements as a slice. It aliases the vector's storage and
// is only valid until the next call that grows or releases the vector.
func (v *Vector[T]) Slice() []T {
	return v.data
}

// All returns an iterator over index-value pairs.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, x := range v.data {
			if !yield(i, x) {
				return
			}
		}
	}
}

// Values returns an iterator over the elements in order.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, x := range v.data {
			if !yield(x) {
				return
			}
		}
	}
}

// Swap exchanges the contents of v and o without copying elements.
// The allocators must be Equal, otherwise each block would later be freed
// through the wrong arena.
func (v *Vector[T]) Swap(o *Vector[T]) error {
	if !v.alloc.Equal(o.alloc) {
		return ErrIncompatibleAllocator
	}
	v.data, o.data = o.data, v.data
	return nil
}

// MoveFrom replaces the contents of v with those of o and leaves o empty.
// With Equal allocators the block changes hands; otherwise the elements are
// copied into storage from v's allocator and o's block is released.
func (v *Vector[T]) MoveFrom(o *Vector[T]) error {
	if v == o {
		return nil
	}

	if v.alloc.Equal(o.alloc) {
		v.Release()
		v.data, o.data = o.data, nil
		return nil
	}

	v.Clear()
	if err := v.Reserve(len(o.data)); err != nil {
		return err
	}
	v.data = append(v.data, o.data...)
	o.Release()
	return nil
}

// realloc moves the elements into a fresh block of newCap elements. The old
// block is freed after the copy, so the arena only reclaims it when the new
// block came from the upstream.
func (v *Vector[T]) realloc(newCap int) error {
	buf, err := v.alloc.AllocSlice(newCap)
	if err != nil {
		return err
	}
	n := copy(buf, v.data)
	old := v.data
	v.data = buf[:n]
	v.alloc.FreeSlice(old)
	return nil
}
