package stackarena

// Option configures an Arena.
type Option func(*options)

type options struct {
	alignment   int
	upstream    Upstream
	observer    Observer
	mmapBacking bool
}

func defaultOptions() options {
	return options{
		alignment: MaxAlign,
		upstream:  Heap,
	}
}

// WithAlignment sets the alignment every arena block is rounded to.
// It must be a power of two; the default is MaxAlign.
func WithAlignment(align int) Option {
	return func(o *options) {
		o.alignment = align
	}
}

// WithUpstream sets the allocator used when a request does not fit into the
// arena. A nil upstream selects Heap.
func WithUpstream(u Upstream) Option {
	return func(o *options) {
		if u == nil {
			u = Heap
		}
		o.upstream = u
	}
}

// WithObserver installs a hook that sees every allocation and deallocation.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithMmapBacking places the arena buffer in an anonymous off-heap mapping
// instead of the Go heap. Arena memory then holds no GC-visible references,
// so it should only store pointer-free data or pointers into the arena.
func WithMmapBacking() Option {
	return func(o *options) {
		o.mmapBacking = true
	}
}
