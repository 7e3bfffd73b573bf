package stackarena

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverEvents(t *testing.T) {
	var events []Event
	obs := ObserverFunc(func(e Event) { events = append(events, e) })

	a, _ := newTestArena(t, 256, WithObserver(obs))

	p1, err := a.Allocate(100)
	require.NoError(t, err)
	p2, err := a.Allocate(20)
	require.NoError(t, err)
	big, err := a.Allocate(1000)
	require.NoError(t, err)

	a.Deallocate(big, 1000)
	a.Deallocate(p1, 100)
	a.Deallocate(p2, 20)

	expected := []Event{
		{Op: OpAlloc, Outcome: OutcomeLocal, Requested: 100, Reserved: 112, Used: 112},
		{Op: OpAlloc, Outcome: OutcomeLocal, Requested: 20, Reserved: 32, Used: 144},
		{Op: OpAlloc, Outcome: OutcomeFallback, Requested: 1000, Used: 144},
		{Op: OpFree, Outcome: OutcomeFallback, Requested: 1000, Used: 144},
		{Op: OpFree, Outcome: OutcomeShadowed, Requested: 100, Used: 144},
		{Op: OpFree, Outcome: OutcomeReclaimed, Requested: 20, Reserved: 32, Used: 112},
	}
	assert.Equal(t, expected, events)
}

func TestObserverFailure(t *testing.T) {
	var got Event
	a, err := New(64,
		WithUpstream(NewLimitedUpstream(nil, 0)),
		WithObserver(ObserverFunc(func(e Event) { got = e })),
	)
	require.NoError(t, err)
	defer a.Release()

	_, err = a.Allocate(128)
	require.Error(t, err)

	assert.Equal(t, OpAlloc, got.Op)
	assert.Equal(t, OutcomeFailed, got.Outcome)
	assert.Equal(t, 128, got.Requested)
	assert.ErrorIs(t, got.Err, ErrOutOfMemory)
}

func TestMultiObserver(t *testing.T) {
	var n1, n2 int
	obs := MultiObserver(
		ObserverFunc(func(Event) { n1++ }),
		nil,
		ObserverFunc(func(Event) { n2++ }),
	)

	a, _ := newTestArena(t, 128, WithObserver(obs))
	p, err := a.Allocate(8)
	require.NoError(t, err)
	a.Deallocate(p, 8)

	assert.Equal(t, 2, n1)
	assert.Equal(t, 2, n2)
}

func TestOpOutcomeString(t *testing.T) {
	assert.Equal(t, "alloc", OpAlloc.String())
	assert.Equal(t, "free", OpFree.String())
	assert.Equal(t, "unknown", Op(9).String())

	names := map[Outcome]string{
		OutcomeLocal:     "local",
		OutcomeFallback:  "fallback",
		OutcomeReclaimed: "reclaimed",
		OutcomeShadowed:  "shadowed",
		OutcomeFailed:    "failed",
		Outcome(42):      "unknown",
	}
	for o, name := range names {
		assert.Equal(t, name, o.String())
	}
}

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a, _ := newTestArena(t, 64, WithObserver(NewLogObserver(logger)))
	p, err := a.Allocate(10)
	require.NoError(t, err)
	a.Deallocate(p, 10)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "arena alloc", lines[0]["msg"])
	assert.Equal(t, "local", lines[0]["outcome"])
	assert.EqualValues(t, 10, lines[0]["requested"])
	assert.EqualValues(t, 16, lines[0]["reserved"])

	assert.Equal(t, "arena free", lines[1]["msg"])
	assert.Equal(t, "reclaimed", lines[1]["outcome"])
	assert.EqualValues(t, 0, lines[1]["used"])
}

func TestLogObserverFailuresAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	a, err := New(64,
		WithUpstream(NewLimitedUpstream(nil, 0)),
		WithObserver(NewLogObserver(logger)),
	)
	require.NoError(t, err)
	defer a.Release()

	_, err = a.Allocate(8)
	require.NoError(t, err)
	_, err = a.Allocate(100)
	require.Error(t, err)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 1, "debug events are filtered at info level")
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "arena allocation failed", lines[0]["msg"])
	assert.Contains(t, lines[0]["error"], "exceeds upstream budget")
}

func TestNewLogObserverDefaultLogger(t *testing.T) {
	o := NewLogObserver(nil)
	assert.Same(t, slog.Default(), o.logger)
}
