package collector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribery/aushape-go/internal/aushapeerr"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/pkg/auparse"
)

func TestPathOrdersItemsByIndexRegardlessOfArrivalOrder(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	p := NewPath(flatFormat(), tree)
	pcount := 0

	require.NoError(t, p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{
			{Name: "item", Interpreted: "1"},
			{Name: "name", Interpreted: "/b"},
		},
	}))
	require.NoError(t, p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{
			{Name: "item", Interpreted: "0"},
			{Name: "name", Interpreted: "/a"},
		},
	}))
	require.NoError(t, p.End(&pcount, 0, 20))

	require.Equal(t,
		`"path":[{"name":["/a"]},{"name":["/b"]}]`,
		renderTree(tree))
	require.Equal(t, 1, pcount)
}

func TestPathMissingItemFieldIsInvalid(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	p := NewPath(flatFormat(), tree)
	pcount := 0

	err := p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{{Name: "name", Interpreted: "/a"}},
	})
	require.Error(t, err)
	kind, ok := aushapeerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aushapeerr.InvalidPath, kind)
}

func TestPathDuplicateItemIndexIsInvalid(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	p := NewPath(flatFormat(), tree)
	pcount := 0

	require.NoError(t, p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{{Name: "item", Interpreted: "0"}},
	}))
	err := p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{{Name: "item", Interpreted: "0"}},
	})
	require.Error(t, err)
	kind, ok := aushapeerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aushapeerr.InvalidPath, kind)
}

func TestPathGapInIndexSequenceIsInvalid(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	p := NewPath(flatFormat(), tree)
	pcount := 0

	require.NoError(t, p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{{Name: "item", Interpreted: "0"}},
	}))
	require.NoError(t, p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{{Name: "item", Interpreted: "2"}},
	}))
	err := p.End(&pcount, 0, 20)
	require.Error(t, err)
	kind, ok := aushapeerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aushapeerr.InvalidPath, kind)
}

func TestPathIsEmptyUntilAdd(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	p := NewPath(flatFormat(), tree)
	require.True(t, p.IsEmpty())

	pcount := 0
	require.NoError(t, p.Add(&pcount, 0, 20, auparse.Record{
		Fields: []auparse.Field{{Name: "item", Interpreted: "0"}},
	}))
	require.False(t, p.IsEmpty())
}
