package stackarena

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/sync/semaphore"

	"github.com/pavanmanishd/stackarena/internal/mmap"
)

// Upstream is the general-purpose allocator an Arena falls back to when a
// request does not fit into its buffer.
type Upstream interface {
	// Alloc returns a block of at least n bytes aligned to MaxAlign.
	Alloc(n int) (unsafe.Pointer, error)
	// Free releases a block returned by Alloc with the same n.
	Free(p unsafe.Pointer, n int)
}

// Heap is the process-wide Go heap upstream. Arenas use it unless
// WithUpstream says otherwise.
var Heap = NewHeapUpstream()

// HeapUpstream serves blocks from the Go heap. Every live block is pinned in a
// table so the garbage collector keeps it reachable while only arena memory
// refers to it. Blocks are byte memory and are not scanned for pointers.
// HeapUpstream is safe for concurrent use.
type HeapUpstream struct {
	mu    sync.Mutex
	pins  map[uintptr][]byte
	bytes int
}

// NewHeapUpstream creates an empty HeapUpstream.
func NewHeapUpstream() *HeapUpstream {
	return &HeapUpstream{pins: make(map[uintptr][]byte)}
}

// Alloc allocates n bytes aligned to MaxAlign.
func (h *HeapUpstream) Alloc(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, n)
	}
	if n > math.MaxInt-MaxAlign {
		return nil, fmt.Errorf("%w: %d bytes", ErrSizeOverflow, n)
	}

	b := alignSlice(make([]byte, n+MaxAlign-1), n, MaxAlign)
	p := unsafe.Pointer(unsafe.SliceData(b))

	h.mu.Lock()
	h.pins[uintptr(p)] = b
	h.bytes += n
	h.mu.Unlock()

	return p, nil
}

// Free unpins the block so the garbage collector can reclaim it.
// Unknown pointers are ignored.
func (h *HeapUpstream) Free(p unsafe.Pointer, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.pins[uintptr(p)]; ok {
		delete(h.pins, uintptr(p))
		h.bytes -= len(b)
	}
}

// Live returns the number of blocks not yet freed.
func (h *HeapUpstream) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pins)
}

// LiveBytes returns the number of bytes in blocks not yet freed.
func (h *HeapUpstream) LiveBytes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bytes
}

// MmapUpstream maps every block as its own anonymous off-heap region.
// Blocks are page aligned and page granular, which suits large spills.
// MmapUpstream is safe for concurrent use.
type MmapUpstream struct {
	mu   sync.Mutex
	maps map[uintptr]*mmap.Mapping
}

// NewMmapUpstream creates an empty MmapUpstream.
func NewMmapUpstream() *MmapUpstream {
	return &MmapUpstream{maps: make(map[uintptr]*mmap.Mapping)}
}

// Alloc maps n bytes rounded up to whole pages.
// It returns ErrUnsupported on platforms without anonymous mappings.
func (u *MmapUpstream) Alloc(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, n)
	}

	m, err := mmap.MapAnon(mmap.RoundToPage(n))
	if err != nil {
		return nil, err
	}
	p := unsafe.Pointer(unsafe.SliceData(m.Bytes()))

	u.mu.Lock()
	u.maps[uintptr(p)] = m
	u.mu.Unlock()

	return p, nil
}

// Free unmaps the block. Unknown pointers are ignored.
func (u *MmapUpstream) Free(p unsafe.Pointer, _ int) {
	u.mu.Lock()
	m, ok := u.maps[uintptr(p)]
	delete(u.maps, uintptr(p))
	u.mu.Unlock()

	if ok {
		_ = m.Close()
	}
}

// Live returns the number of mappings not yet freed.
func (u *MmapUpstream) Live() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.maps)
}

// LimitedUpstream caps the number of bytes another upstream may hand out.
// Requests beyond the budget fail immediately with ErrOutOfMemory, which
// makes it a deterministic stand-in for an exhausted global allocator.
type LimitedUpstream struct {
	next  Upstream
	limit int64
	sem   *semaphore.Weighted

	mu     sync.Mutex
	blocks map[uintptr]int64
	inUse  int64
}

// NewLimitedUpstream wraps next with a budget of limitBytes.
// A nil next selects Heap.
func NewLimitedUpstream(next Upstream, limitBytes int64) *LimitedUpstream {
	if next == nil {
		next = Heap
	}
	if limitBytes < 0 {
		limitBytes = 0
	}
	return &LimitedUpstream{
		next:   next,
		limit:  limitBytes,
		sem:    semaphore.NewWeighted(limitBytes),
		blocks: make(map[uintptr]int64),
	}
}

// Alloc reserves n bytes of budget and forwards to the wrapped upstream.
// It never blocks.
func (l *LimitedUpstream) Alloc(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, n)
	}

	if !l.sem.TryAcquire(int64(n)) {
		return nil, fmt.Errorf("%w: %d bytes exceeds upstream budget (%d of %d in use)",
			ErrOutOfMemory, n, l.InUse(), l.limit)
	}

	p, err := l.next.Alloc(n)
	if err != nil {
		l.sem.Release(int64(n))
		return nil, err
	}

	l.mu.Lock()
	l.blocks[uintptr(p)] = int64(n)
	l.inUse += int64(n)
	l.mu.Unlock()

	return p, nil
}

// Free returns the block to the wrapped upstream. n should match the Alloc
// call, but the budget is credited with the size recorded at Alloc, so a
// mismatched n cannot overdraw it. Blocks this upstream did not hand out
// are forwarded without touching the budget.
func (l *LimitedUpstream) Free(p unsafe.Pointer, n int) {
	l.mu.Lock()
	size, ok := l.blocks[uintptr(p)]
	if ok {
		delete(l.blocks, uintptr(p))
		l.inUse -= size
	}
	l.mu.Unlock()

	if ok {
		l.next.Free(p, int(size))
		l.sem.Release(size)
		return
	}
	l.next.Free(p, n)
}

// InUse returns the number of budgeted bytes currently handed out.
func (l *LimitedUpstream) InUse() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inUse
}

// Limit returns the budget in bytes.
func (l *LimitedUpstream) Limit() int64 {
	return l.limit
}
