package collector

import (
	"strconv"

	"github.com/scribery/aushape-go/internal/aushapeerr"
	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// pathMaxIndex bounds the item= field PATH records carry: it indexes into
// a single syscall's path list, which the kernel never grows past a few
// hundred entries.
const pathMaxIndex = 255

// Path reassembles a sequence of PATH records, keyed by each record's
// item= field, into one "<path>items</path>" fragment. Records can
// arrive out of the order their item indices imply; Path places each one
// positionally in an internal tree so the rendered order always matches
// item index regardless of arrival order, and rejects the event if End
// is reached with a gap in the index sequence.
type Path struct {
	format format.Format
	tree   *gbtree.Tree
	inner  *gbtree.Tree
	opened bool
}

// NewPath returns an empty Path collector.
func NewPath(f format.Format, tree *gbtree.Tree) *Path {
	return &Path{format: f, tree: tree, inner: gbtree.New(256, 8, 8)}
}

func (p *Path) IsEmpty() bool {
	return p.inner.IsEmpty()
}

func (p *Path) Empty() {
	p.inner.Empty()
	p.opened = false
}

func (p *Path) Add(pcount *int, level int64, prio int64, rec auparse.Record) error {
	if !p.opened {
		if p.format.Lang == format.LangXML {
			format.SpaceOpening(p.inner.Text(), p.format, level)
			p.inner.Text().AppendString("<path>")
		} else {
			format.SpaceOpening(p.inner.Text(), p.format, level)
			p.inner.Text().AppendString(`"path":[`)
		}
		p.inner.AppendText(0)
		p.opened = true
	}

	l := level + 1
	if p.format.Lang == format.LangXML {
		format.SpaceOpening(p.inner.Text(), p.format, l)
		p.inner.Text().AppendString("<item>")
	} else {
		format.SpaceOpening(p.inner.Text(), p.format, l)
		p.inner.Text().AppendByte('{')
	}
	l++

	idx := int64(-1)
	n := 0
	for _, field := range rec.Fields {
		switch field.Name {
		case "type", "node":
			continue
		case "item":
			if idx != -1 {
				return aushapeerr.New(aushapeerr.InvalidPath, "duplicate item= field in PATH record")
			}
			v, err := strconv.ParseInt(field.Interpreted, 10, 64)
			if err != nil || v < 0 || v > pathMaxIndex {
				return aushapeerr.Newf(aushapeerr.InvalidPath, "malformed item index %q", field.Interpreted)
			}
			idx = v
		default:
			format.Field(p.inner.Text(), p.format, l, n == 0, field.Name, field)
			n++
		}
	}
	if idx < 0 {
		return aushapeerr.New(aushapeerr.InvalidPath, "PATH record missing item= field")
	}

	l--
	if p.format.Lang == format.LangXML {
		format.SpaceClosing(p.inner.Text(), p.format, l)
		p.inner.Text().AppendString("</item>")
	} else {
		format.SpaceClosing(p.inner.Text(), p.format, l)
		p.inner.Text().AppendByte('}')
	}

	slot := idx + 1
	if p.format.Lang == format.LangJSON {
		slot = idx*2 + 1
	}
	if p.inner.NodeExists(int(slot)) {
		return aushapeerr.Newf(aushapeerr.InvalidPath, "duplicate PATH item index %d", idx)
	}
	p.inner.PutText(int(slot), idx+1)

	return nil
}

// End fills the JSON comma separators between whatever items landed at
// their positional slots, verifies no index was left unfilled, and
// commits the whole path as one Child node of the parent tree.
func (p *Path) End(pcount *int, level int64, prio int64) error {
	if p.IsEmpty() {
		return nil
	}

	if p.format.Lang == format.LangJSON {
		for slot := 1; slot < p.inner.NodeCount(); slot += 2 {
			if !p.inner.NodeExists(slot) {
				return aushapeerr.New(aushapeerr.InvalidPath, "PATH item index sequence has a gap")
			}
			if slot+1 < p.inner.NodeCount() {
				idx := int64(slot / 2)
				p.inner.Text().AppendByte(',')
				p.inner.PutText(slot+1, idx+2)
			}
		}
	} else {
		for slot := 1; slot < p.inner.NodeCount(); slot++ {
			if !p.inner.NodeExists(slot) {
				return aushapeerr.New(aushapeerr.InvalidPath, "PATH item index sequence has a gap")
			}
		}
	}

	l := level
	if p.format.Lang == format.LangXML {
		format.SpaceClosing(p.inner.Text(), p.format, l)
		p.inner.Text().AppendString("</path>")
	} else {
		format.SpaceClosing(p.inner.Text(), p.format, l)
		p.inner.Text().AppendByte(']')
	}
	p.inner.AppendText(0)

	if p.format.Lang == format.LangJSON && *pcount > 0 {
		parentBuf := p.tree.Text()
		parentBuf.AppendByte(',')
		p.tree.AppendText(prio)
	}
	p.tree.AppendTree(prio, p.inner)
	*pcount++
	return nil
}
