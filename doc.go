// Package stackarena implements a fixed-capacity memory arena with
// stack-order reclamation, and an allocator handle that lets containers draw
// their element storage from it.
//
// # Overview
//
// An Arena owns one pre-allocated buffer and a cursor. Allocate carves blocks
// from the buffer by bumping the cursor, rounding every block up to the arena
// alignment (MaxAlign by default). Deallocate moves the cursor back only when
// the freed block is the most recently allocated one; freeing an older block
// is a no-op and its space stays reserved until Reset. Requests that do not
// fit are forwarded to an Upstream allocator and returned to it on release.
//
// This suits short-lived, bounded containers: a vector built inside a
// function, a scratch list in a request handler, a parse tree thrown away
// after use.
//
// # Basic Usage
//
//	a, err := stackarena.New(4096)
//	if err != nil {
//		return err
//	}
//	defer a.Release()
//
//	p, _ := a.Allocate(100) // 112 bytes reserved
//	a.Deallocate(p, 100)    // cursor back to 0
//
// # Allocators
//
// Allocator[T] translates element counts into byte requests. Handles are
// plain values; Rebind produces a handle for another element type over the
// same arena, and Equal reports whether two handles share an arena:
//
//	ints := stackarena.NewAllocator[int64](a)
//	nodes := stackarena.Rebind[node](ints)
//	stackarena.Equal(ints, nodes) // true
//
// Package seq provides Vector and List containers built on Allocator.
//
// # Garbage Collection
//
// Arena memory is not scanned by the garbage collector. The byte-level API
// (Allocate, AllocBytes) must only hold pointer-free data. Allocator checks
// its element type with HasPointers and keeps pointer-bearing types, and all
// storage of the zero Allocator, in typed Go heap memory instead.
//
// # Fallback
//
// The default upstream is Heap, which pins blocks on the Go heap until they
// are freed. MmapUpstream maps each block off-heap and LimitedUpstream puts
// a byte budget on another upstream; exhausting it surfaces ErrOutOfMemory.
//
// # Observability
//
// WithObserver installs a hook that sees every operation. LogObserver logs
// through log/slog; package arenaprom exports Prometheus counters.
//
// # Thread Safety
//
// Arena is not thread-safe. Give each goroutine its own Arena, or wrap one
// in SafeArena.
package stackarena
