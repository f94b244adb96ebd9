package collector

import (
	"github.com/scribery/aushape-go/internal/escape"
	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/internal/gbuf"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Repeated folds every record it is given into one container fragment,
// named for the record type it was registered under (OBJ_PID, AVC, ...):
// raw lines are joined with newlines into the container's raw attribute,
// and one rendered item is appended per record. Nothing is committed
// until End, since the number of items isn't known up front.
type Repeated struct {
	format format.Format
	tree   *gbtree.Tree
	name   string

	lines *gbuf.Buffer
	items *gbuf.Buffer
	count int
}

// NewRepeated returns a Repeated collector that commits its container
// fragment under the given lower-case name.
func NewRepeated(f format.Format, tree *gbtree.Tree, name string) *Repeated {
	return &Repeated{format: f, tree: tree, name: name, lines: gbuf.New(0), items: gbuf.New(0)}
}

func (r *Repeated) IsEmpty() bool {
	return r.count == 0
}

func (r *Repeated) Empty() {
	r.lines.Reset()
	r.items.Reset()
	r.count = 0
}

func (r *Repeated) Add(pcount *int, level int64, prio int64, rec auparse.Record) error {
	l := level
	if r.format.Lang == format.LangXML {
		l++
	} else {
		l += 2
	}

	if r.lines.Len() > 0 {
		r.lines.AppendByte('\n')
	}
	r.lines.AppendString(rec.Raw)

	if r.format.Lang == format.LangXML {
		format.SpaceOpening(r.items, r.format, l)
		r.items.AppendString("<item>")
	} else {
		if r.count > 0 {
			r.items.AppendByte(',')
		}
		format.SpaceOpening(r.items, r.format, l)
		r.items.AppendByte('{')
	}
	l++

	before := r.items.Len()
	format.Fields(r.items, r.format, l, rec.Fields)
	wrote := r.items.Len() > before
	l--

	if r.format.Lang == format.LangXML {
		format.SpaceClosing(r.items, r.format, l)
		r.items.AppendString("</item>")
	} else {
		if wrote {
			format.SpaceClosing(r.items, r.format, l)
		}
		r.items.AppendByte('}')
	}

	r.count++
	return nil
}

func (r *Repeated) End(pcount *int, level int64, prio int64) error {
	if r.IsEmpty() {
		return nil
	}

	l := level
	buf := r.tree.Text()

	if r.format.Lang == format.LangXML {
		format.SpaceOpening(buf, r.format, l)
		buf.AppendString("<")
		buf.AppendString(r.name)
		buf.AppendString(` raw="`)
		escape.XML(buf, r.lines.Bytes())
		buf.AppendString(`">`)
	} else {
		if *pcount > 0 {
			buf.AppendByte(',')
		}
		format.SpaceOpening(buf, r.format, l)
		buf.AppendString(`"`)
		buf.AppendString(r.name)
		buf.AppendString(`":{`)
		l++
		format.SpaceOpening(buf, r.format, l)
		buf.AppendString(`"raw":"`)
		escape.JSON(buf, r.lines.Bytes())
		buf.AppendString(`",`)
		format.SpaceOpening(buf, r.format, l)
		buf.AppendString(`"items":[`)
	}
	l++
	buf.AppendBuffer(r.items)
	l--

	if r.format.Lang == format.LangXML {
		format.SpaceClosing(buf, r.format, l)
		buf.AppendString("</")
		buf.AppendString(r.name)
		buf.AppendByte('>')
	} else {
		if r.items.Len() > 0 {
			format.SpaceClosing(buf, r.format, l)
		}
		buf.AppendByte(']')
		l--
		format.SpaceClosing(buf, r.format, l)
		buf.AppendByte('}')
	}

	r.tree.AppendText(prio)
	*pcount++
	return nil
}
