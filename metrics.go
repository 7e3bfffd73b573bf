package stackarena

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

type counters struct {
	localAllocs    uint64
	fallbackAllocs uint64
	failedAllocs   uint64
	reclaimed      uint64
	shadowed       uint64
	fallbackFrees  uint64
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	Capacity    int     // Buffer size in bytes
	Used        int     // Bytes in front of the cursor, padding included
	Available   int     // Bytes behind the cursor
	Peak        int     // High-water mark of Used
	Alignment   int     // Block alignment
	Utilization float64 // Ratio of Used to Capacity (0.0-1.0)

	LocalAllocs    uint64 // Allocations served from the buffer
	FallbackAllocs uint64 // Allocations served by the upstream
	FailedAllocs   uint64 // Upstream failures
	Reclaimed      uint64 // Frees that moved the cursor back
	Shadowed       uint64 // Frees of interior blocks (no-op)
	FallbackFrees  uint64 // Frees forwarded to the upstream
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
func (a *Arena) Utilization() float64 {
	if a.size == 0 {
		return 0
	}
	return float64(a.next) / float64(a.size)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		Capacity:       a.size,
		Used:           a.next,
		Available:      a.Available(),
		Peak:           a.peak,
		Alignment:      a.align,
		Utilization:    a.Utilization(),
		LocalAllocs:    a.stats.localAllocs,
		FallbackAllocs: a.stats.fallbackAllocs,
		FailedAllocs:   a.stats.failedAllocs,
		Reclaimed:      a.stats.reclaimed,
		Shadowed:       a.stats.shadowed,
		FallbackFrees:  a.stats.fallbackFrees,
	}
}

func (a *Arena) String() string {
	return a.Metrics().String()
}

func (m ArenaMetrics) String() string {
	return fmt.Sprintf(
		"Arena{used: %s/%s, peak: %s, usage: %.1f%%, local: %d, fallback: %d, failed: %d, reclaimed: %d, shadowed: %d}",
		humanize.IBytes(uint64(m.Used)),
		humanize.IBytes(uint64(m.Capacity)),
		humanize.IBytes(uint64(m.Peak)),
		m.Utilization*100,
		m.LocalAllocs,
		m.FallbackAllocs,
		m.FailedAllocs,
		m.Reclaimed,
		m.Shadowed,
	)
}
