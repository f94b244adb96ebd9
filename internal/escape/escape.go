// Package escape implements the bit-exact XML and JSON string escaping
// rules from the output-formats section of the aushape specification.
// Neither escaper validates UTF-8; high bytes pass through unchanged.
package escape

import (
	"github.com/scribery/aushape-go/internal/gbuf"
)

const hexDigits = "0123456789abcdef"

// XML appends s to buf, escaping '"', '<', '&' and any byte below 0x20 or
// equal to 0x7F as a numeric character reference.
func XML(buf *gbuf.Buffer, s []byte) {
	for _, c := range s {
		switch {
		case c == '"':
			buf.AppendString("&quot;")
		case c == '<':
			buf.AppendString("&lt;")
		case c == '&':
			buf.AppendString("&amp;")
		case c < 0x20 || c == 0x7f:
			appendHexRef(buf, c)
		default:
			buf.AppendByte(c)
		}
	}
}

func appendHexRef(buf *gbuf.Buffer, c byte) {
	buf.AppendString("&#x")
	buf.AppendByte(hexDigits[c>>4])
	buf.AppendByte(hexDigits[c&0xf])
	buf.AppendString(";")
}

// JSON appends s to buf, escaping '"', '\\', the standard short escapes
// (\b \f \n \r \t) and any other C0 control byte or DEL as \u00HH.
func JSON(buf *gbuf.Buffer, s []byte) {
	for _, c := range s {
		switch c {
		case '"':
			buf.AppendString(`\"`)
		case '\\':
			buf.AppendString(`\\`)
		case '\b':
			buf.AppendString(`\b`)
		case '\f':
			buf.AppendString(`\f`)
		case '\n':
			buf.AppendString(`\n`)
		case '\r':
			buf.AppendString(`\r`)
		case '\t':
			buf.AppendString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				buf.AppendString(`\u00`)
				buf.AppendByte(hexDigits[c>>4])
				buf.AppendByte(hexDigits[c&0xf])
			} else {
				buf.AppendByte(c)
			}
		}
	}
}
