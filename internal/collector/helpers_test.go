package collector

import (
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/internal/gbuf"
)

func renderTree(tree *gbtree.Tree) string {
	out := gbuf.New(0)
	tree.Render(out)
	return string(out.Bytes())
}
