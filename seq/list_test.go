package seq

import (
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/stackarena"
)

func TestListPushPop(t *testing.T) {
	a := newArena(t, 4096)
	l := NewList(stackarena.NewAllocator[string](a))

	require.NoError(t, l.PushBack("b"))
	require.NoError(t, l.PushBack("c"))
	require.NoError(t, l.PushFront("a"))
	assert.Equal(t, 3, l.Len())

	front, ok := l.Front()
	assert.True(t, ok)
	assert.Equal(t, "a", front)
	back, ok := l.Back()
	assert.True(t, ok)
	assert.Equal(t, "c", back)

	assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(l.All()))
	assert.Equal(t, []string{"c", "b", "a"}, slices.Collect(l.Backward()))

	x, ok := l.PopFront()
	assert.True(t, ok)
	assert.Equal(t, "a", x)
	x, ok = l.PopBack()
	assert.True(t, ok)
	assert.Equal(t, "c", x)
	x, ok = l.PopBack()
	assert.True(t, ok)
	assert.Equal(t, "b", x)

	_, ok = l.PopBack()
	assert.False(t, ok)
	_, ok = l.PopFront()
	assert.False(t, ok)
	_, ok = l.Front()
	assert.False(t, ok)
	_, ok = l.Back()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}

func TestListNodesLiveInArena(t *testing.T) {
	a := newArena(t, 4096)
	al := stackarena.NewAllocator[int64](a)
	l := NewList(al)

	require.NoError(t, l.PushBack(1))
	assert.True(t, a.Owns(unsafe.Pointer(l.head)))
	assert.Equal(t, 32, a.Used(), "node is two pointers plus the value")

	assert.True(t, l.Allocator().Equal(al))
	assert.Equal(t, al, l.Allocator())
}

func TestListClearReclaimsArena(t *testing.T) {
	a := newArena(t, 4096)
	l := NewList(stackarena.NewAllocator[int](a))

	for i := range 50 {
		require.NoError(t, l.PushBack(i))
	}
	assert.Equal(t, 50*32, a.Used())

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, a.Used())
	assert.Equal(t, uint64(50), a.Metrics().Reclaimed)
}

func TestListEarlyBreak(t *testing.T) {
	var l List[int]
	for i := range 5 {
		require.NoError(t, l.PushBack(i))
	}
	defer l.Clear()

	var got []int
	for x := range l.All() {
		if x == 2 {
			break
		}
		got = append(got, x)
	}
	assert.Equal(t, []int{0, 1}, got)

	got = got[:0]
	for x := range l.Backward() {
		if x == 2 {
			break
		}
		got = append(got, x)
	}
	assert.Equal(t, []int{4, 3}, got)
}

func TestListSplice(t *testing.T) {
	a := newArena(t, 4096)
	al := stackarena.NewAllocator[int](a)

	l1, l2 := NewList(al), NewList(al)
	for i := range 3 {
		require.NoError(t, l1.PushBack(i))
		require.NoError(t, l2.PushBack(10+i))
	}

	require.NoError(t, l1.Splice(l2))
	assert.Equal(t, []int{0, 1, 2, 10, 11, 12}, slices.Collect(l1.All()))
	assert.Equal(t, []int{12, 11, 10, 2, 1, 0}, slices.Collect(l1.Backward()))
	assert.Equal(t, 6, l1.Len())
	assert.Equal(t, 0, l2.Len())

	require.NoError(t, l1.Splice(l2), "empty source is a no-op")
	require.NoError(t, l1.Splice(l1))
	assert.Equal(t, 6, l1.Len())

	empty := NewList(al)
	require.NoError(t, empty.Splice(l1))
	assert.Equal(t, 6, empty.Len())
	front, _ := empty.Front()
	assert.Equal(t, 0, front)
}

func TestListSpliceIncompatible(t *testing.T) {
	l1 := NewList(stackarena.NewAllocator[int](newArena(t, 1024)))
	l2 := NewList(stackarena.NewAllocator[int](newArena(t, 1024)))
	require.NoError(t, l2.PushBack(1))

	assert.ErrorIs(t, l1.Splice(l2), ErrIncompatibleAllocator)
	assert.Equal(t, 1, l2.Len())
	assert.Equal(t, 0, l1.Len())
}

func TestListFallbackNodes(t *testing.T) {
	up := stackarena.NewHeapUpstream()
	a, err := stackarena.New(64, stackarena.WithUpstream(up))
	require.NoError(t, err)
	defer a.Release()

	l := NewList(stackarena.NewAllocator[int](a))
	for i := range 4 {
		require.NoError(t, l.PushBack(i))
	}
	assert.Equal(t, 64, a.Used())
	assert.Equal(t, 2, up.Live())
	assert.Equal(t, []int{0, 1, 2, 3}, slices.Collect(l.All()))

	l.Clear()
	assert.Equal(t, 0, up.Live())
	assert.Equal(t, 0, a.Used())
}
