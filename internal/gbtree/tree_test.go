package gbtree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribery/aushape-go/internal/gbuf"
)

func TestAppendTextRendersAppendedBytes(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("hello")
	tr.AppendText(1)
	tr.Text().AppendString(" world")
	tr.AppendText(1)

	out := gbuf.New(0)
	tr.Render(out)
	require.Equal(t, "hello world", string(out.Bytes()))
}

func TestPutTextExtendsWithVoids(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("x")
	tr.PutText(3, 0)
	require.Equal(t, 4, tr.NodeCount())

	out := gbuf.New(0)
	tr.Render(out)
	require.Equal(t, "x", string(out.Bytes()))
}

func TestNodeExists(t *testing.T) {
	tr := New(0, 0, 0)
	require.False(t, tr.NodeExists(0))
	require.False(t, tr.NodeExists(-1))

	tr.Text().AppendString("x")
	tr.PutText(3, 0)
	require.False(t, tr.NodeExists(0))
	require.False(t, tr.NodeExists(2))
	require.True(t, tr.NodeExists(3))
	require.False(t, tr.NodeExists(4))
}

func TestPutTreeChildRendersRecursively(t *testing.T) {
	parent := New(0, 0, 0)
	child := New(0, 0, 0)
	child.Text().AppendString("child")
	child.AppendText(0)

	parent.Text().AppendString("a")
	parent.AppendText(0)
	parent.AppendTree(1, child)
	parent.Text().AppendString("b")
	parent.AppendText(0)

	out := gbuf.New(0)
	parent.Render(out)
	require.Equal(t, "achildb", string(out.Bytes()))
}

func TestNodeVoidRemovesFromRender(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("a")
	i0 := tr.AppendText(0)
	tr.Text().AppendString("b")
	tr.AppendText(0)

	tr.NodeVoid(i0)

	out := gbuf.New(0)
	tr.Render(out)
	require.Equal(t, "b", string(out.Bytes()))
}

func TestPutTextUnlinksPreviousOccupant(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("first")
	tr.PutText(0, 5)
	require.Equal(t, int64(5), tr.prioTotal(5))

	tr.Text().AppendString("second")
	tr.PutText(0, 7)
	require.Equal(t, int64(0), tr.prioTotal(5))
	require.Equal(t, int64(6), tr.prioTotal(7))
}

func TestGetLenSumsTextAndChildren(t *testing.T) {
	parent := New(0, 0, 0)
	child := New(0, 0, 0)
	child.Text().AppendString("xy")
	child.AppendText(0)

	parent.Text().AppendString("abc")
	parent.AppendText(0)
	parent.AppendTree(0, child)

	require.Equal(t, int64(5), parent.GetLen(false))
}

func TestSolidAndIsEmpty(t *testing.T) {
	tr := New(0, 0, 0)
	require.True(t, tr.Solid())
	require.True(t, tr.IsEmpty())

	tr.PutText(2, 0) // creates voids at 0,1
	require.False(t, tr.Solid())

	tr.Text().AppendString("x")
	tr.AppendText(0)
	require.False(t, tr.IsEmpty())
}

func TestRenderSkipsVoidsAndPreservesOrder(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("A")
	a := tr.AppendText(0)
	tr.Text().AppendString("B")
	tr.AppendText(0)
	tr.Text().AppendString("C")
	tr.AppendText(0)

	tr.NodeVoid(a)

	out := gbuf.New(0)
	tr.Render(out)
	require.Equal(t, "BC", string(out.Bytes()))
}

func TestTrimFitsWithinBudgetByVoidingHigherPriority(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("keep-me")
	tr.AppendText(0)
	tr.Text().AppendString("drop-me-please")
	tr.AppendText(1)

	tr.Trim(7)

	out := gbuf.New(0)
	tr.Render(out)
	require.Equal(t, "keep-me", string(out.Bytes()))
	require.LessOrEqual(t, tr.GetLen(true), int64(7))
}

func TestTrimCannotVoidPriorityZeroBecomesAtomic(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("0123456789")
	tr.AppendText(0)

	tr.Trim(3)

	require.True(t, tr.IsAtomic())
	require.Equal(t, int64(10), tr.GetLen(true))
}

func TestTrimEverythingFitsNoChange(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("short")
	tr.AppendText(0)

	tr.Trim(1000)

	out := gbuf.New(0)
	tr.Render(out)
	require.Equal(t, "short", string(out.Bytes()))
}

func TestTrimProportionallyShrinksNonAtomicChild(t *testing.T) {
	parent := New(0, 0, 0)

	child := New(0, 0, 0)
	child.Text().AppendString("aaaaaaaaaa")
	child.AppendText(1) // priority 1 inside child: trimmable, not atomic

	parent.Text().AppendString("root")
	parent.AppendText(0)
	parent.AppendTree(1, child)

	parent.Trim(6) // 4 bytes of priority 0 + 2 bytes allowance for the child

	require.LessOrEqual(t, parent.GetLen(true), int64(6))
}

func TestEmptyResetsState(t *testing.T) {
	tr := New(0, 0, 0)
	tr.Text().AppendString("x")
	tr.AppendText(0)
	tr.Empty()

	require.Equal(t, 0, tr.NodeCount())
	require.Equal(t, int64(0), tr.GetLen(false))
	require.True(t, tr.IsEmpty())
}
