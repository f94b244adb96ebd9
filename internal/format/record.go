package format

import (
	"strings"

	"github.com/scribery/aushape-go/internal/escape"
	"github.com/scribery/aushape-go/internal/gbuf"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Record appends one fully-rendered record container to buf at level:
//
//	XML:  <name raw="...">field...</name>
//	JSON: "name":{"raw":"...","fields":{field...}}
//
// name is lowercased to match the wire convention regardless of how the
// parser capitalized the record type.
func Record(buf *gbuf.Buffer, f Format, level int64, first bool, name string, raw string, fields []auparse.Field) {
	l := level
	lower := strings.ToLower(name)

	switch f.Lang {
	case LangXML:
		SpaceOpening(buf, f, l)
		buf.AppendByte('<')
		buf.AppendString(lower)
		buf.AppendString(` raw="`)
		escape.XML(buf, []byte(raw))
		buf.AppendString(`">`)
	case LangJSON:
		if !first {
			buf.AppendByte(',')
		}
		SpaceOpening(buf, f, l)
		buf.AppendByte('"')
		buf.AppendString(lower)
		buf.AppendString(`":{`)
		l++
		SpaceOpening(buf, f, l)
		buf.AppendString(`"raw":"`)
		escape.JSON(buf, []byte(raw))
		buf.AppendString(`",`)
		SpaceOpening(buf, f, l)
		buf.AppendString(`"fields":{`)
	}

	l++
	before := buf.Len()
	Fields(buf, f, l, fields)
	wrote := buf.Len() > before
	l--

	switch f.Lang {
	case LangXML:
		SpaceClosing(buf, f, l)
		buf.AppendString("</")
		buf.AppendString(lower)
		buf.AppendByte('>')
	case LangJSON:
		if wrote {
			SpaceClosing(buf, f, l)
		}
		buf.AppendByte('}')
		l--
		SpaceClosing(buf, f, l)
		buf.AppendByte('}')
	}
}
