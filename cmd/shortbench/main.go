// Command shortbench compares an arena-backed vector of fixed-size elements
// against a plain heap slice.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pavanmanishd/stackarena"
	"github.com/pavanmanishd/stackarena/seq"
)

var (
	elemSize  = flag.Int("elem-size", 1024, "Element size in bytes (64, 256, 1024, 4096)")
	numElems  = flag.Int("n", 100, "Elements pushed per round")
	arenaSize = flag.Int("arena-size", 0, "Arena capacity in bytes (default elem-size*128)")
	rounds    = flag.Int("rounds", 1000, "Number of rounds")
	reserve   = flag.Bool("reserve", false, "Reserve the vector up front instead of growing it")
	trace     = flag.Bool("trace", false, "Log every arena allocation and deallocation")
	jsonLogs  = flag.Bool("json", false, "Emit JSON logs")
)

type (
	block64  [64]byte
	block256 [256]byte
	block1K  [1024]byte
	block4K  [4096]byte
)

type config struct {
	numElems  int
	arenaSize int
	rounds    int
	reserve   bool
	logger    *slog.Logger
	trace     bool
}

type result struct {
	arena   time.Duration
	heap    time.Duration
	metrics stackarena.ArenaMetrics
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if *jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)

	if err := run(logger); err != nil {
		logger.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config{
		numElems:  *numElems,
		arenaSize: *arenaSize,
		rounds:    *rounds,
		reserve:   *reserve,
		logger:    logger,
		trace:     *trace,
	}
	if cfg.arenaSize <= 0 {
		cfg.arenaSize = *elemSize * 128
	}
	if cfg.numElems <= 0 || cfg.rounds <= 0 {
		return errors.New("n and rounds must be positive")
	}

	logger.Info("starting benchmark",
		"elem_size", humanize.IBytes(uint64(*elemSize)),
		"n", cfg.numElems,
		"arena_size", humanize.IBytes(uint64(cfg.arenaSize)),
		"rounds", cfg.rounds,
		"reserve", cfg.reserve,
	)

	var (
		res result
		err error
	)
	switch *elemSize {
	case 64:
		res, err = bench[block64](cfg)
	case 256:
		res, err = bench[block256](cfg)
	case 1024:
		res, err = bench[block1K](cfg)
	case 4096:
		res, err = bench[block4K](cfg)
	default:
		return fmt.Errorf("unsupported elem-size %d", *elemSize)
	}
	if err != nil {
		return err
	}

	m := res.metrics
	logger.Info("arena vector",
		"total", res.arena,
		"per_round", res.arena/time.Duration(cfg.rounds),
		"peak", humanize.IBytes(uint64(m.Peak)),
		"local_allocs", m.LocalAllocs,
		"fallback_allocs", m.FallbackAllocs,
		"reclaimed", m.Reclaimed,
		"shadowed", m.Shadowed,
	)
	logger.Info("heap slice",
		"total", res.heap,
		"per_round", res.heap/time.Duration(cfg.rounds),
	)
	return nil
}

func bench[T any](cfg config) (result, error) {
	var res result

	var obs stackarena.Observer
	if cfg.trace {
		obs = stackarena.NewLogObserver(cfg.logger)
	}
	a, err := stackarena.New(cfg.arenaSize, stackarena.WithObserver(obs))
	if err != nil {
		return res, err
	}
	defer a.Release()

	start := time.Now()
	for range cfg.rounds {
		v := seq.NewVector(stackarena.NewAllocator[T](a))
		if cfg.reserve {
			if err := v.Reserve(cfg.numElems); err != nil {
				return res, err
			}
		}
		var zero T
		for range cfg.numElems {
			if err := v.Push(zero); err != nil {
				return res, err
			}
		}
		v.Release()
		a.Reset()
	}
	res.arena = time.Since(start)
	res.metrics = a.Metrics()

	start = time.Now()
	for range cfg.rounds {
		var s []T
		if cfg.reserve {
			s = make([]T, 0, cfg.numElems)
		}
		var zero T
		for range cfg.numElems {
			s = append(s, zero)
		}
		sink = len(s)
	}
	res.heap = time.Since(start)

	return res, nil
}

// sink keeps the heap baseline from being optimized away.
var sink int
