package garr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndGet(t *testing.T) {
	a := New[int](0)
	idx := a.Append(42)
	require.Equal(t, 0, idx)
	require.Equal(t, 42, a.Get(0))
	require.Equal(t, 1, a.Len())
}

func TestSetExtendsWithZeroValue(t *testing.T) {
	a := New[string](0)
	a.Set(3, "x")
	require.Equal(t, 4, a.Len())
	require.Equal(t, "", a.Get(0))
	require.Equal(t, "x", a.Get(3))
}

func TestPtrMutatesInPlace(t *testing.T) {
	type node struct{ n int }
	a := New[node](0)
	a.Append(node{n: 1})
	a.Ptr(0).n = 99
	require.Equal(t, 99, a.Get(0).n)
}

func TestResetClearsLength(t *testing.T) {
	a := New[int](0)
	a.Append(1)
	a.Append(2)
	a.Reset()
	require.Equal(t, 0, a.Len())
}

func TestEachVisitsInOrder(t *testing.T) {
	a := New[int](0)
	a.Append(10)
	a.Append(20)
	a.Append(30)
	var seen []int
	a.Each(func(i, v int) { seen = append(seen, v) })
	require.Equal(t, []int{10, 20, 30}, seen)
}

func TestGrowBeyondInitialCapacity(t *testing.T) {
	a := New[int](2)
	for i := 0; i < 100; i++ {
		a.Append(i)
	}
	require.Equal(t, 100, a.Len())
	require.Equal(t, 99, a.Get(99))
}
