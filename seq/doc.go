// Package seq provides ordered-sequence containers whose storage comes from
// a stackarena.Allocator.
//
// Vector keeps its elements in one contiguous block and doubles it on growth.
// List allocates one node per element through an allocator rebound to its
// node type, so elements and bookkeeping share the same arena.
//
// Only pointer-free element types are stored in arena memory, which the
// garbage collector does not scan. Anything else (strings, slices, pointers
// and structs containing them) is kept in ordinary Go heap storage by the
// allocator, so containers of such types stay correct but gain nothing from
// the arena.
//
// Containers are not goroutine-safe, and neither is the arena behind them.
package seq

import "errors"

// ErrIncompatibleAllocator is returned when an operation would hand storage
// from one allocator to a container using another that is not Equal.
var ErrIncompatibleAllocator = errors.New("seq: allocators are not interchangeable")
