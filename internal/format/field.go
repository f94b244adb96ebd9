package format

import (
	"github.com/scribery/aushape-go/internal/escape"
	"github.com/scribery/aushape-go/internal/gbuf"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Field appends one field fragment to buf at the given nesting level:
//
//	XML:  <name i="interp" r="raw"/>    (r= omitted when raw == interp)
//	JSON: "name":["interp"]             ("raw" appended as a second element
//	                                     when it differs from interp)
//
// first controls the leading comma in JSON output; level is the field's
// own level (the line the opening tag/key sits on).
func Field(buf *gbuf.Buffer, f Format, level int64, first bool, name string, field auparse.Field) {
	l := level
	switch f.Lang {
	case LangXML:
		SpaceOpening(buf, f, l)
		buf.AppendByte('<')
		buf.AppendString(name)
		buf.AppendString(` i="`)
		escape.XML(buf, []byte(field.Interpreted))
		if field.HasRaw {
			buf.AppendString(`" r="`)
			escape.XML(buf, []byte(field.Raw))
		}
		buf.AppendString(`"/>`)
	case LangJSON:
		if !first {
			buf.AppendByte(',')
		}
		SpaceOpening(buf, f, l)
		buf.AppendByte('"')
		buf.AppendString(name)
		buf.AppendString(`":[`)
		l++
		SpaceOpening(buf, f, l)
		buf.AppendByte('"')
		escape.JSON(buf, []byte(field.Interpreted))
		buf.AppendByte('"')
		if field.HasRaw {
			buf.AppendByte(',')
			SpaceOpening(buf, f, l)
			buf.AppendByte('"')
			escape.JSON(buf, []byte(field.Raw))
			buf.AppendByte('"')
		}
		l--
		SpaceClosing(buf, f, l)
		buf.AppendByte(']')
	}
}

// Fields appends every field in fields (skipping "type" and "node", which
// are carried on the record rather than rendered as fields) at level, and
// returns how many fragments were written.
func Fields(buf *gbuf.Buffer, f Format, level int64, fields []auparse.Field) int {
	n := 0
	for _, field := range fields {
		if field.Name == "type" || field.Name == "node" {
			continue
		}
		Field(buf, f, level, n == 0, field.Name, field)
		n++
	}
	return n
}
