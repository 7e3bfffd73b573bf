package stackarena

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/pavanmanishd/stackarena/internal/mmap"
)

const (
	// DefaultCapacity is the arena capacity used when New is given a
	// non-positive size (64 KiB).
	DefaultCapacity = 1 << 16

	// MaxAlign is the default block alignment. It matches the largest
	// alignment any Go type or C max_align_t requires on supported platforms.
	MaxAlign = 16
)

var errNilBlock = errors.New("upstream returned nil block")

// Arena is a fixed-capacity bump allocator. Blocks are carved from a single
// buffer in allocation order and only the most recently allocated live block
// can be given back. Requests that do not fit are forwarded to the upstream
// allocator.
//
// Arena memory is not scanned by the garbage collector: a block must not
// hold the only reference to Go heap memory.
//
// Arena is not goroutine-safe. Use SafeArena or one Arena per goroutine.
type Arena struct {
	buf   []byte
	base  uintptr
	size  int
	next  int
	peak  int
	align int

	upstream Upstream
	observer Observer
	mapping  *mmap.Mapping
	stats    counters
}

// New creates an Arena holding capacity bytes.
// If capacity <= 0, DefaultCapacity is used.
func New(capacity int, opts ...Option) (*Arena, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.alignment <= 0 || o.alignment&(o.alignment-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, o.alignment)
	}
	if capacity > math.MaxInt-o.alignment {
		return nil, fmt.Errorf("%w: capacity %d", ErrSizeOverflow, capacity)
	}

	a := &Arena{
		size:     capacity,
		align:    o.alignment,
		upstream: o.upstream,
		observer: o.observer,
	}

	raw := capacity + o.alignment - 1
	if o.mmapBacking {
		m, err := mmap.MapAnon(mmap.RoundToPage(raw))
		if err != nil {
			return nil, fmt.Errorf("stackarena: map backing buffer: %w", err)
		}
		a.mapping = m
		a.buf = alignSlice(m.Bytes(), capacity, o.alignment)
	} else {
		a.buf = alignSlice(make([]byte, raw), capacity, o.alignment)
	}
	a.base = uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))

	return a, nil
}

// Allocate returns a block of at least n bytes.
//
// The block is carved from the arena when the aligned size fits into the
// remaining space; otherwise exactly n bytes are requested from the upstream
// allocator. Only the upstream path can fail. Allocate(0) returns nil and
// leaves the arena untouched.
func (a *Arena) Allocate(n int) (unsafe.Pointer, error) {
	a.panicIfReleased()

	if n < 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, n)
	}
	if n == 0 {
		return nil, nil
	}

	// Fast path: bump the cursor. Checking n first keeps alignUp from
	// overflowing on huge requests.
	if free := a.size - a.next; n <= free {
		if aligned := a.alignUp(n); aligned <= free {
			p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.buf)), a.next)
			a.next += aligned
			if a.next > a.peak {
				a.peak = a.next
			}
			a.stats.localAllocs++
			a.observe(Event{Op: OpAlloc, Outcome: OutcomeLocal, Requested: n, Reserved: aligned, Used: a.next})
			return p, nil
		}
	}

	return a.allocateUpstream(n)
}

// allocateUpstream handles requests the buffer cannot hold.
func (a *Arena) allocateUpstream(n int) (unsafe.Pointer, error) {
	p, err := a.upstream.Alloc(n)
	if err == nil && p == nil {
		err = errNilBlock
	}
	if err != nil {
		err = outOfMemory(n, err)
		a.stats.failedAllocs++
		a.observe(Event{Op: OpAlloc, Outcome: OutcomeFailed, Requested: n, Used: a.next, Err: err})
		return nil, err
	}

	a.stats.fallbackAllocs++
	a.observe(Event{Op: OpAlloc, Outcome: OutcomeFallback, Requested: n, Used: a.next})
	return p, nil
}

// Deallocate gives back a block obtained from Allocate with the same n.
//
// A block inside the buffer is reclaimed only when it is the most recently
// allocated live block; any other arena block stays reserved until Reset.
// Blocks from outside the buffer are returned to the upstream allocator.
func (a *Arena) Deallocate(p unsafe.Pointer, n int) {
	a.panicIfReleased()

	if p == nil {
		return
	}

	if !a.Owns(p) {
		a.upstream.Free(p, n)
		a.stats.fallbackFrees++
		a.observe(Event{Op: OpFree, Outcome: OutcomeFallback, Requested: n, Used: a.next})
		return
	}

	off := int(uintptr(p) - a.base)
	if n > 0 && n <= a.size {
		if aligned := a.alignUp(n); off+aligned == a.next {
			a.next = off
			a.stats.reclaimed++
			a.observe(Event{Op: OpFree, Outcome: OutcomeReclaimed, Requested: n, Reserved: aligned, Used: a.next})
			return
		}
	}

	a.stats.shadowed++
	a.observe(Event{Op: OpFree, Outcome: OutcomeShadowed, Requested: n, Used: a.next})
}

// AllocBytes allocates n bytes and returns them as a slice.
// Returns nil if n == 0.
func (a *Arena) AllocBytes(n int) ([]byte, error) {
	p, err := a.Allocate(n)
	if p == nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(p), n), nil
}

// FreeBytes deallocates a slice returned by AllocBytes. The slice must not
// have been resliced.
func (a *Arena) FreeBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	a.Deallocate(unsafe.Pointer(unsafe.SliceData(b)), len(b))
}

// Owns reports whether p points into the arena buffer.
func (a *Arena) Owns(p unsafe.Pointer) bool {
	return uintptr(p)-a.base < uintptr(len(a.buf))
}

// Used returns the number of buffer bytes in front of the cursor,
// alignment padding included.
func (a *Arena) Used() int {
	return a.next
}

// Capacity returns the size of the arena buffer.
func (a *Arena) Capacity() int {
	if a == nil {
		return 0
	}
	return a.size
}

// Available returns the number of buffer bytes behind the cursor.
func (a *Arena) Available() int {
	return a.size - a.next
}

// Alignment returns the alignment every arena block is rounded to.
func (a *Arena) Alignment() int {
	return a.align
}

// Peak returns the high-water mark of Used. It survives Reset.
func (a *Arena) Peak() int {
	return a.peak
}

// Reset moves the cursor back to the start of the buffer, invalidating every
// arena block at once. Upstream blocks are not tracked and stay live.
func (a *Arena) Reset() {
	a.panicIfReleased()
	a.next = 0
}

// Release drops the buffer and makes the arena unusable.
// Any subsequent allocation or deallocation will panic.
func (a *Arena) Release() error {
	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
		a.mapping = nil
	}
	a.buf = nil
	a.base = 0
	a.next = 0
	return err
}

// alignUp rounds n up to the arena alignment. Allocate and Deallocate must
// agree on it or LIFO retraction corrupts the cursor.
func (a *Arena) alignUp(n int) int {
	mask := a.align - 1
	return (n + mask) &^ mask
}

func (a *Arena) observe(e Event) {
	if a.observer != nil {
		a.observer.Observe(e)
	}
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.buf == nil {
		panic("stackarena: use after Release()")
	}
}

// alignSlice returns the size-byte window of raw that starts on an align
// boundary. raw must hold at least size+align-1 bytes.
func alignSlice(raw []byte, size, align int) []byte {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	mask := uintptr(align - 1)
	off := int((uintptr(align) - addr&mask) & mask)
	return raw[off : off+size : off+size]
}
