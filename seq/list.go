package seq

import (
	"iter"

	"github.com/pavanmanishd/stackarena"
)

type node[T any] struct {
	prev, next *node[T]
	value      T
}

// NoScan lets nodes live in arena memory when T holds no pointers. The links
// only refer to nodes from the same allocator, which keeps them alive.
func (node[T]) NoScan() bool {
	return !stackarena.HasPointers[T]()
}

// List is a doubly linked list. Nodes are allocated one at a time through
// the list's allocator rebound to the node type. When T holds pointers the
// nodes are ordinary Go heap objects instead of arena memory.
// The zero List is empty and allocates from the Go heap.
type List[T any] struct {
	alloc      stackarena.Allocator[node[T]]
	head, tail *node[T]
	len        int
}

// NewList returns an empty List whose nodes come from alloc's arena.
func NewList[T any](alloc stackarena.Allocator[T]) *List[T] {
	return &List[T]{alloc: stackarena.Rebind[node[T]](alloc)}
}

// Allocator returns the element allocator the list was created with.
func (l *List[T]) Allocator() stackarena.Allocator[T] {
	return stackarena.Rebind[T](l.alloc)
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return l.len
}

// PushBack appends v.
func (l *List[T]) PushBack(v T) error {
	n, err := l.newNode(v)
	if err != nil {
		return err
	}
	n.prev = l.tail
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.len++
	return nil
}

// PushFront prepends v.
func (l *List[T]) PushFront(v T) error {
	n, err := l.newNode(v)
	if err != nil {
		return err
	}
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
	return nil
}

// PopBack removes and returns the last element.
func (l *List[T]) PopBack() (T, bool) {
	n := l.tail
	if n == nil {
		var zero T
		return zero, false
	}
	l.tail = n.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	return l.drop(n), true
}

// PopFront removes and returns the first element.
func (l *List[T]) PopFront() (T, bool) {
	n := l.head
	if n == nil {
		var zero T
		return zero, false
	}
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	return l.drop(n), true
}

// Front returns the first element.
func (l *List[T]) Front() (T, bool) {
	if l.head == nil {
		var zero T
		return zero, false
	}
	return l.head.value, true
}

// Back returns the last element.
func (l *List[T]) Back() (T, bool) {
	if l.tail == nil {
		var zero T
		return zero, false
	}
	return l.tail.value, true
}

// All returns an iterator over the elements from front to back.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Backward returns an iterator over the elements from back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.tail; n != nil; n = n.prev {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Clear removes all elements. Nodes are freed from the back so that a list
// built with PushBack hands its arena space back in stack order.
func (l *List[T]) Clear() {
	for l.len > 0 {
		l.PopBack()
	}
}

// Splice moves every element of o to the back of l without copying and
// leaves o empty. The allocators must be Equal.
func (l *List[T]) Splice(o *List[T]) error {
	if l == o || o.len == 0 {
		return nil
	}
	if !l.alloc.Equal(o.alloc) {
		return ErrIncompatibleAllocator
	}

	o.head.prev = l.tail
	if l.tail != nil {
		l.tail.next = o.head
	} else {
		l.head = o.head
	}
	l.tail = o.tail
	l.len += o.len

	o.head, o.tail, o.len = nil, nil, 0
	return nil
}

func (l *List[T]) newNode(v T) (*node[T], error) {
	n, err := l.alloc.Allocate(1)
	if err != nil {
		return nil, err
	}
	n.value = v
	return n, nil
}

// drop frees a node that is already unlinked and returns its value.
func (l *List[T]) drop(n *node[T]) T {
	v := n.value
	*n = node[T]{}
	l.alloc.Deallocate(n, 1)
	l.len--
	return v
}
