// Package format defines the immutable output-format configuration shared
// by every converter, and the nesting-aware whitespace policy derived from
// it.
package format

import (
	"math"

	"github.com/scribery/aushape-go/internal/gbuf"
)

// Lang selects the output language.
type Lang int

const (
	// LangInvalid is the zero value; Format.Valid reports false for it.
	LangInvalid Lang = iota
	// LangXML renders events as XML.
	LangXML
	// LangJSON renders events as JSON.
	LangJSON
)

func (l Lang) String() string {
	switch l {
	case LangXML:
		return "xml"
	case LangJSON:
		return "json"
	default:
		return "invalid"
	}
}

// FoldAll folds every nesting level onto a single line.
const FoldAll = 0

// FoldNone never folds; output is fully unfolded regardless of depth.
const FoldNone = math.MaxInt64

// EventsPerDoc encodes the document-framing mode (spec.md §4 "Format").
//
//	== 0         bare: no prologue/epilogue, no separators
//	== 1         one document per event
//	>  1         up to N events per document
//	<  0         close a document once |N| bytes have been emitted since
//	             its prologue
//	== EventsPerDocAll  a single document wraps the whole stream
type EventsPerDoc int64

// EventsPerDocBare requests no document wrapping at all.
const EventsPerDocBare EventsPerDoc = 0

// EventsPerDocAll wraps the entire stream in a single outer document.
const EventsPerDocAll EventsPerDoc = math.MaxInt64

// MinMaxEventSize is the smallest max-event-size that can admit an empty
// event's framing plus the trimmed/error markers. Below this, trimming
// could never converge.
const MinMaxEventSize = 64

// Format is the immutable, per-converter rendering configuration.
type Format struct {
	Lang Lang

	// FoldLevel is the nesting depth at which output collapses onto one
	// line. FoldAll folds everything; FoldNone never folds.
	FoldLevel int64

	// InitIndent is the number of leading spaces for the least-nested
	// unfolded line.
	InitIndent int64
	// NestIndent is the number of additional spaces per nesting level.
	NestIndent int64

	// EventsPerDoc selects the document-framing mode.
	EventsPerDoc EventsPerDoc

	// WithText includes the parser's raw record lines in the output.
	WithText bool

	// MaxEventSize is the hard per-event byte budget enforced by trimming.
	MaxEventSize int64
}

// Valid reports whether f is usable.
func (f Format) Valid() bool {
	if f.Lang != LangXML && f.Lang != LangJSON {
		return false
	}
	return f.MaxEventSize >= MinMaxEventSize
}

// folded reports whether everything at or below level is folded onto one
// line under f.
func (f Format) folded(level int64) bool {
	return level > f.FoldLevel
}

// SpaceOpening writes the whitespace that precedes a block opening at the
// given nesting level: nothing if folded, otherwise a newline followed by
// the level's indent.
func SpaceOpening(buf *gbuf.Buffer, f Format, level int64) {
	if f.folded(level) {
		return
	}
	buf.AppendByte('\n')
	appendIndent(buf, f, level)
}

// SpaceClosing writes the whitespace that precedes a block's closing
// delimiter. level is the block's own nesting level — the same value
// passed to the SpaceOpening call that opened it — and the delimiter is
// indented to match. It is a no-op if the level above (the block's
// contents) is folded, since nothing inside got its own line either.
func SpaceClosing(buf *gbuf.Buffer, f Format, level int64) {
	if f.folded(level + 1) {
		return
	}
	buf.AppendByte('\n')
	appendIndent(buf, f, level)
}

func appendIndent(buf *gbuf.Buffer, f Format, level int64) {
	n := f.InitIndent + level*f.NestIndent
	for i := int64(0); i < n; i++ {
		buf.AppendByte(' ')
	}
}

// XMLDeclNewline reports whether the XML prologue owes an extra newline
// between the "<?xml ... ?>" declaration and the document's opening
// "<log>" tag. This is independent of the level-0 SpaceOpening call that
// follows it for "<log>" itself: folding collapses nesting onto one line,
// but the declaration and "<log>" are siblings at level 0 rather than
// parent/child, so only a non-trivial fold level asks for the separator.
func XMLDeclNewline(f Format) bool {
	return f.Lang == LangXML && f.FoldLevel > 0
}
