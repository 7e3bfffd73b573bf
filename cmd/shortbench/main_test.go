package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBenchGrowth(t *testing.T) {
	cfg := config{
		numElems:  10,
		arenaSize: 64 * 128,
		rounds:    3,
		logger:    discardLogger(),
	}

	res, err := bench[block64](cfg)
	require.NoError(t, err)

	// Capacities 1, 2, 4, 8 and 16 per round; the last block is reclaimed.
	m := res.metrics
	assert.Equal(t, uint64(15), m.LocalAllocs)
	assert.Equal(t, uint64(0), m.FallbackAllocs)
	assert.Equal(t, uint64(3), m.Reclaimed)
	assert.Equal(t, uint64(12), m.Shadowed)
	assert.Equal(t, 64*31, m.Peak)
	assert.Equal(t, 0, m.Used, "arena is reset after every round")
}

func TestBenchReserve(t *testing.T) {
	cfg := config{
		numElems:  10,
		arenaSize: 64 * 128,
		rounds:    2,
		reserve:   true,
		logger:    discardLogger(),
		trace:     true,
	}

	res, err := bench[block64](cfg)
	require.NoError(t, err)

	m := res.metrics
	assert.Equal(t, uint64(2), m.LocalAllocs)
	assert.Equal(t, uint64(2), m.Reclaimed)
	assert.Equal(t, 640, m.Peak)
}

func TestBenchFallback(t *testing.T) {
	cfg := config{
		numElems:  4,
		arenaSize: 256,
		rounds:    1,
		logger:    discardLogger(),
	}

	res, err := bench[block256](cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.metrics.LocalAllocs)
	assert.Equal(t, uint64(2), res.metrics.FallbackAllocs)
}

func TestRunValidation(t *testing.T) {
	defer func(n, r, e int) {
		*numElems, *rounds, *elemSize = n, r, e
	}(*numElems, *rounds, *elemSize)

	*numElems = 0
	assert.Error(t, run(discardLogger()))

	*numElems, *rounds, *elemSize = 5, 2, 100
	assert.ErrorContains(t, run(discardLogger()), "unsupported elem-size 100")

	*elemSize = 64
	assert.NoError(t, run(discardLogger()))
}
