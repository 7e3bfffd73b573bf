package stackarena

import (
	"context"
	"log/slog"
)

// Op identifies the arena operation behind an Event.
type Op uint8

const (
	OpAlloc Op = iota
	OpFree
)

func (o Op) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpFree:
		return "free"
	default:
		return "unknown"
	}
}

// Outcome says how an operation was served.
type Outcome uint8

const (
	// OutcomeLocal means the block was carved from the arena buffer.
	OutcomeLocal Outcome = iota
	// OutcomeFallback means the block came from, or went back to, the upstream.
	OutcomeFallback
	// OutcomeReclaimed means the most recent arena block was popped.
	OutcomeReclaimed
	// OutcomeShadowed means an interior arena block was freed and stays reserved.
	OutcomeShadowed
	// OutcomeFailed means the upstream could not serve the request.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLocal:
		return "local"
	case OutcomeFallback:
		return "fallback"
	case OutcomeReclaimed:
		return "reclaimed"
	case OutcomeShadowed:
		return "shadowed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes one Allocate or Deallocate call.
type Event struct {
	Op        Op
	Outcome   Outcome
	Requested int   // bytes asked for by the caller
	Reserved  int   // arena bytes reserved or reclaimed, alignment included
	Used      int   // arena cursor after the operation
	Err       error // set for OutcomeFailed
}

// Observer receives an Event for every arena operation. Observers run
// synchronously on the allocating goroutine and must not call back into the
// arena.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// MultiObserver fans every event out to each of obs in order.
func MultiObserver(obs ...Observer) Observer {
	list := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return multiObserver(list)
}

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// LogObserver writes arena events to a structured logger. Successful
// operations are logged at debug level, failures at warn level.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver. A nil logger selects slog.Default().
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

// Observe logs e.
func (o *LogObserver) Observe(e Event) {
	ctx := context.Background()

	if e.Err != nil {
		o.logger.WarnContext(ctx, "arena allocation failed",
			"op", e.Op.String(),
			"requested", e.Requested,
			"used", e.Used,
			"error", e.Err,
		)
		return
	}

	if !o.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	o.logger.DebugContext(ctx, "arena "+e.Op.String(),
		"outcome", e.Outcome.String(),
		"requested", e.Requested,
		"reserved", e.Reserved,
		"used", e.Used,
	)
}
