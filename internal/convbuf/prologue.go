package convbuf

import "github.com/scribery/aushape-go/internal/format"

// AddPrologue appends the document-opening fragment — "<log>" (preceded
// by the XML declaration) or "[" — to the output buffer. Callers using
// EventsPerDocBare never call this.
func (b *Buffer) AddPrologue() {
	f := b.format
	format.SpaceOpening(b.out, f, 0)
	switch f.Lang {
	case format.LangXML:
		b.out.AppendString(`<?xml version="1.0" encoding="UTF-8"?>`)
		if format.XMLDeclNewline(f) {
			b.out.AppendByte('\n')
		}
		format.SpaceOpening(b.out, f, 0)
		b.out.AppendString("<log>")
	case format.LangJSON:
		b.out.AppendByte('[')
	}
}

// AddEpilogue appends the document-closing fragment — "</log>" or "]" —
// to the output buffer.
func (b *Buffer) AddEpilogue() {
	f := b.format
	format.SpaceClosing(b.out, f, 0)
	switch f.Lang {
	case format.LangXML:
		b.out.AppendString("</log>")
	case format.LangJSON:
		b.out.AppendByte(']')
	}
}
