package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaInsertGetRemove(t *testing.T) {
	a := NewArena[string]()
	idx := a.Insert("hello")

	v, ok := a.Get(idx)
	require.True(t, ok)
	require.Equal(t, "hello", *v)

	require.NoError(t, a.Remove(idx))
	_, ok = a.Get(idx)
	require.False(t, ok)
}

func TestArenaDetectsUseAfterFreeViaGeneration(t *testing.T) {
	a := NewArena[int]()
	first := a.Insert(1)
	require.NoError(t, a.Remove(first))

	second := a.Insert(2)
	require.Equal(t, first.slot, second.slot, "slot should be reused")
	require.NotEqual(t, first.generation, second.generation)

	_, ok := a.Get(first)
	require.False(t, ok, "stale handle into a reused slot must fail")

	v, ok := a.Get(second)
	require.True(t, ok)
	require.Equal(t, 2, *v)
}

func TestArenaEachVisitsOnlyLive(t *testing.T) {
	a := NewArena[int]()
	a.Insert(1)
	second := a.Insert(2)
	a.Insert(3)
	require.NoError(t, a.Remove(second))

	var seen []int
	a.Each(func(_ Index, v *int) { seen = append(seen, *v) })
	require.Equal(t, []int{1, 3}, seen)
	require.Equal(t, 2, a.Len())
}
