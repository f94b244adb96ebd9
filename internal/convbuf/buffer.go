// Package convbuf assembles one audit event at a time into a bounded-size
// fragment, ready for a converter to stitch between document prologue and
// epilogue bytes. The event tree carries a fixed set of structural nodes
// (header, trimmed marker, error marker, closing tag) plus two attached
// sub-trees, one for the event's raw source lines and one for its
// collected records, so the whole thing can be trimmed to a byte budget
// by internal/gbtree's generic algorithm without convbuf knowing anything
// about which part gave way.
package convbuf

import (
	"time"

	"github.com/scribery/aushape-go/internal/aushapeerr"
	"github.com/scribery/aushape-go/internal/collector"
	"github.com/scribery/aushape-go/internal/escape"
	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/internal/gbuf"
	"github.com/scribery/aushape-go/internal/stats"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Buffer assembles and renders one event at a time, accumulating its
// rendered bytes (and any document prologue/epilogue fragments) into an
// output buffer a converter drains between calls.
type Buffer struct {
	format   format.Format
	registry *collector.Registry
	stats    *stats.Counters

	out   *gbuf.Buffer
	event *gbtree.Tree
	text  *gbtree.Tree
	data  *gbtree.Tree
}

// New returns a Buffer ready to assemble events under f, recording run
// totals into st.
func New(f format.Format, st *stats.Counters) *Buffer {
	data := gbtree.New(4096, 256, 256)
	return &Buffer{
		format:   f,
		registry: collector.NewRegistry(f, data),
		stats:    st,
		out:      gbuf.New(4096),
		event:    gbtree.New(1024, 32, 32),
		text:     gbtree.New(4096, 8, 8),
		data:     data,
	}
}

// Output returns the bytes accumulated since the last Reset.
func (b *Buffer) Output() []byte {
	return b.out.Bytes()
}

// Reset empties the output buffer for the next piece, without disturbing
// per-event state (which AddEvent always clears itself before returning).
func (b *Buffer) Reset() {
	b.out.Reset()
}

// OverrideRecordRule replaces the collector responsible for recordType
// with a freshly constructed one of the given kind, as
// collector.Registry.Override does, wired to this buffer's own format
// and commit tree. Must be called before the first AddEvent.
func (b *Buffer) OverrideRecordRule(recordType string, kind collector.Kind, name string) {
	b.registry.Override(b.format, b.data, recordType, kind, name)
}

// eventLevel returns the nesting level an event's own opening tag sits
// at: one level deeper than the document root when a document wrapper
// exists (events_per_doc != bare), level 0 when output is bare.
func (b *Buffer) eventLevel() int64 {
	if b.format.EventsPerDoc != format.EventsPerDocBare {
		return 1
	}
	return 0
}

func formatTimestamp(ts auparse.Timestamp) string {
	t := time.Unix(ts.Sec, int64(ts.Milli)*int64(time.Millisecond)).Local()
	return t.Format("2006-01-02T15:04:05.000-07:00")
}

// AddEvent renders one event as a fragment of the output buffer. first
// controls the leading comma between sibling events in JSON output.
// padded reports whether anything was appended — an event with no
// records is dropped silently, same as a zero-length event never
// occurred.
func (b *Buffer) AddEvent(first bool, event auparse.Event) (padded bool, err error) {
	defer func() {
		b.registry.Empty()
		b.event.Empty()
		b.text.Empty()
		b.data.Empty()
	}()

	f := b.format
	level := b.eventLevel()
	l := level

	timestamp := formatTimestamp(event.Timestamp)

	trimmedIdx, errorIdx := b.addHeader(f, l, first, event.Timestamp, timestamp)
	l++

	b.addTextOpen(f, l)
	textIdx := b.event.AppendTree(1, b.text)
	b.addDataOpen(f, l)
	dataIdx := b.event.AppendTree(2, b.data)

	l++

	recordNum := 0
	lineNum := int64(0)
	var recordErr error
	for _, rec := range event.Records {
		b.addLine(f, l, lineNum, rec.Raw)
		lineNum++

		if recordErr == nil {
			if addErr := b.registry.Add(&recordNum, l, int64(recordNum), rec); addErr != nil {
				recordErr = addErr
			}
		}
	}

	if recordErr == nil {
		if endErr := b.registry.End(&recordNum, l, int64(recordNum)); endErr != nil {
			recordErr = endErr
		}
	}

	if recordNum == 0 && recordErr == nil {
		b.stats.Dropped.Add(1)
		return false, nil
	}

	l--

	b.closeText(f, l, lineNum)

	if recordErr == nil {
		b.closeData(f, l, recordNum)
	}

	if recordErr != nil {
		b.event.NodeVoid(dataIdx)
		b.addError(f, l, errorIdx, recordErr)
		b.stats.Errored.Add(1)
	}

	l--

	b.closeEvent(f, l)

	if !f.WithText && recordErr == nil {
		b.event.NodeVoid(textIdx)
	}

	before := b.event.GetLen(false)
	b.event.Trim(f.MaxEventSize)
	after := b.event.GetLen(true)
	if after < before {
		b.addTrimmedMarker(f, level, trimmedIdx)
		b.event.Trim(f.MaxEventSize)
		b.stats.Trimmed.Add(1)
	}

	outBefore := len(b.out.Bytes())
	b.event.Render(b.out)
	b.stats.Bytes.Add(int64(len(b.out.Bytes()) - outBefore))
	b.stats.Events.Add(1)

	return true, nil
}

func (b *Buffer) addHeader(
	f format.Format, l int64, first bool, ts auparse.Timestamp, timestamp string,
) (trimmedIdx, errorIdx int) {
	buf := b.event.Text()
	switch f.Lang {
	case format.LangXML:
		format.SpaceOpening(buf, f, l)
		buf.AppendFormat(`<event serial="%d" time="%s"`, ts.Serial, timestamp)
		if ts.Host != "" {
			buf.AppendString(` node="`)
			xmlAppend(buf, ts.Host)
			buf.AppendString(`"`)
		}
		b.event.AppendText(0)
		trimmedIdx = b.event.AppendText(0)
		errorIdx = b.event.AppendText(0)
		buf.AppendString(">")
		b.event.AppendText(0)
	case format.LangJSON:
		if !first {
			buf.AppendByte(',')
		}
		format.SpaceOpening(buf, f, l)
		buf.AppendByte('{')
		l++
		format.SpaceOpening(buf, f, l)
		buf.AppendFormat(`"serial":%d`, ts.Serial)
		buf.AppendByte(',')
		format.SpaceOpening(buf, f, l)
		buf.AppendFormat(`"time":"%s"`, timestamp)
		if ts.Host != "" {
			buf.AppendByte(',')
			format.SpaceOpening(buf, f, l)
			buf.AppendString(`"node":"`)
			jsonAppend(buf, ts.Host)
			buf.AppendByte('"')
		}
		b.event.AppendText(0)
		trimmedIdx = b.event.AppendText(0)
		errorIdx = b.event.AppendText(0)
	}
	return trimmedIdx, errorIdx
}

func (b *Buffer) addTextOpen(f format.Format, l int64) {
	buf := b.text.Text()
	switch f.Lang {
	case format.LangXML:
		format.SpaceOpening(buf, f, l)
		buf.AppendString("<text>")
	case format.LangJSON:
		buf.AppendByte(',')
		format.SpaceOpening(buf, f, l)
		buf.AppendString(`"text":[`)
	}
	b.text.AppendText(0)
}

func (b *Buffer) addDataOpen(f format.Format, l int64) {
	buf := b.data.Text()
	switch f.Lang {
	case format.LangXML:
		format.SpaceOpening(buf, f, l)
		buf.AppendString("<data>")
	case format.LangJSON:
		buf.AppendByte(',')
		format.SpaceOpening(buf, f, l)
		buf.AppendString(`"data":{`)
	}
	b.data.AppendText(0)
}

func (b *Buffer) addLine(f format.Format, l int64, lineNum int64, raw string) {
	buf := b.text.Text()
	switch f.Lang {
	case format.LangXML:
		format.SpaceOpening(buf, f, l)
		buf.AppendString("<line>")
		xmlAppend(buf, raw)
		buf.AppendString("</line>")
	case format.LangJSON:
		if lineNum > 0 {
			buf.AppendByte(',')
		}
		format.SpaceOpening(buf, f, l)
		buf.AppendByte('"')
		jsonAppend(buf, raw)
		buf.AppendByte('"')
	}
	b.text.AppendText(lineNum)
}

func (b *Buffer) closeText(f format.Format, l int64, lineNum int64) {
	buf := b.text.Text()
	switch f.Lang {
	case format.LangXML:
		format.SpaceClosing(buf, f, l)
		buf.AppendString("</text>")
	case format.LangJSON:
		if lineNum > 0 {
			format.SpaceClosing(buf, f, l)
		}
		buf.AppendString("]")
	}
	b.text.AppendText(0)
}

func (b *Buffer) closeData(f format.Format, l int64, recordNum int) {
	buf := b.data.Text()
	switch f.Lang {
	case format.LangXML:
		format.SpaceClosing(buf, f, l)
		buf.AppendString("</data>")
	case format.LangJSON:
		if recordNum > 0 {
			format.SpaceClosing(buf, f, l)
		}
		buf.AppendString("}")
	}
	b.data.AppendText(0)
}

func (b *Buffer) addError(f format.Format, l int64, errorIdx int, cause error) {
	buf := b.event.Text()
	desc := errorDesc(cause)
	switch f.Lang {
	case format.LangXML:
		buf.AppendString(` error="`)
		xmlAppend(buf, desc)
		buf.AppendString(`"`)
	case format.LangJSON:
		buf.AppendByte(',')
		format.SpaceOpening(buf, f, l)
		buf.AppendString(`"error":"`)
		jsonAppend(buf, desc)
		buf.AppendByte('"')
	}
	b.event.PutText(errorIdx, 0)
}

func (b *Buffer) closeEvent(f format.Format, l int64) {
	buf := b.event.Text()
	switch f.Lang {
	case format.LangXML:
		format.SpaceClosing(buf, f, l)
		buf.AppendString("</event>")
	case format.LangJSON:
		format.SpaceClosing(buf, f, l)
		buf.AppendByte('}')
	}
	b.event.AppendText(0)
}

func (b *Buffer) addTrimmedMarker(f format.Format, level int64, trimmedIdx int) {
	buf := b.event.Text()
	switch f.Lang {
	case format.LangXML:
		buf.AppendString(` trimmed=""`)
	case format.LangJSON:
		buf.AppendByte(',')
		format.SpaceOpening(buf, f, level+1)
		buf.AppendString(`"trimmed":[]`)
	}
	b.event.PutText(trimmedIdx, 0)
}

func errorDesc(err error) string {
	if kind, ok := aushapeerr.KindOf(err); ok {
		return kind.String()
	}
	return err.Error()
}

func xmlAppend(buf *gbuf.Buffer, s string) {
	escape.XML(buf, []byte(s))
}

func jsonAppend(buf *gbuf.Buffer, s string) {
	escape.JSON(buf, []byte(s))
}
