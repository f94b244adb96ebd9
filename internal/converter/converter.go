// Package converter drives a Parser and a convbuf.Buffer to produce a
// stream of documents on an output.Sink, framing events into documents
// according to a Format's events_per_doc mode and sticking the first
// terminal error across every later call until the caller closes the
// converter.
package converter

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/scribery/aushape-go/internal/aushapeerr"
	"github.com/scribery/aushape-go/internal/collector"
	"github.com/scribery/aushape-go/internal/convbuf"
	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/output"
	"github.com/scribery/aushape-go/internal/stats"
	"github.com/scribery/aushape-go/pkg/auparse"
)

type state int

const (
	stateCreated state = iota
	stateBegun
	stateEnded
)

// Converter turns parsed events into framed documents written to a Sink.
// Begin/Input/Flush/End must be called in that order; Close releases
// resources and may be called at any time, any number of times.
type Converter struct {
	id     uuid.UUID
	logger log.Logger

	format format.Format
	parser auparse.Parser
	sink   output.Sink
	buf    *convbuf.Buffer
	stats  *stats.Counters

	state state
	err   error // sticky, set once, returned by every later call

	docOpen     bool
	firstInDoc  bool
	eventsInDoc int64
	bytesInDoc  int64
}

// New builds a Converter over parser, writing framed documents to sink
// under f. logger is decorated with a per-instance run-correlation id,
// following the teacher's convention of tagging long-lived components
// with a uuid included in every subsequent log line.
func New(logger log.Logger, f format.Format, parser auparse.Parser, sink output.Sink, st *stats.Counters) *Converter {
	id := uuid.New()
	c := &Converter{
		id:     id,
		logger: log.With(logger, "run_id", id.String()),
		format: f,
		parser: parser,
		sink:   sink,
		buf:    convbuf.New(f, st),
		stats:  st,
	}
	parser.OnEvent(c.onEvent)
	return c
}

// OverrideRecordRule applies a --record-rule TYPE=KIND override to the
// underlying collector registry. Must be called before Begin.
func (c *Converter) OverrideRecordRule(recordType string, kind collector.Kind, name string) {
	c.buf.OverrideRecordRule(recordType, kind, name)
}

// fail handles an error surfaced by a public method. A Kind whose
// Sticky() is true, or an error with no Kind at all, is latched into
// c.err, poisoning every later call; any other Kind is logged and returned
// for this call only, leaving the converter usable afterwards — this is the
// event-boundary recovery spec.md describes for kinds 4-7, generalized to
// cover a single bad parser feed as well as a single bad record.
func (c *Converter) fail(err error) error {
	if kind, ok := aushapeerr.KindOf(err); ok && !kind.Sticky() {
		level.Warn(c.logger).Log("msg", "recoverable converter error", "err", err)
		return err
	}
	if c.err == nil {
		c.err = err
		level.Error(c.logger).Log("msg", "converter failed", "err", err)
	}
	return c.err
}

// Begin starts document output. A no-op when events_per_doc is bare,
// since bare output never has a document wrapper to open.
func (c *Converter) Begin() error {
	if c.err != nil {
		return c.err
	}
	if c.state != stateCreated {
		return c.fail(aushapeerr.New(aushapeerr.InvalidState, "Begin called out of order"))
	}
	c.state = stateBegun
	level.Debug(c.logger).Log("msg", "converter begin", "lang", c.format.Lang, "events_per_doc", int64(c.format.EventsPerDoc))
	if c.format.EventsPerDoc == format.EventsPerDocAll {
		if err := c.openDoc(); err != nil {
			return c.fail(err)
		}
	}
	return nil
}

// Input feeds a piece of raw log text to the parser. Complete events are
// rendered and written to the sink synchronously, via onEvent, before
// Input returns.
func (c *Converter) Input(p []byte) error {
	if c.err != nil {
		return c.err
	}
	if c.state != stateBegun {
		return c.fail(aushapeerr.New(aushapeerr.InvalidState, "Input called before Begin or after End"))
	}
	if err := c.parser.Feed(p); err != nil {
		return c.fail(aushapeerr.Wrap(err, aushapeerr.ParserFailure, "feeding parser"))
	}
	return c.err
}

// Flush forces delivery of any event the parser has buffered but not yet
// reported.
func (c *Converter) Flush() error {
	if c.err != nil {
		return c.err
	}
	if c.state != stateBegun {
		return c.fail(aushapeerr.New(aushapeerr.InvalidState, "Flush called before Begin or after End"))
	}
	if err := c.parser.Flush(); err != nil {
		return c.fail(aushapeerr.Wrap(err, aushapeerr.ParserFailure, "flushing parser"))
	}
	return c.err
}

// End finishes document output, closing any document still open. Has
// effect only if events_per_doc != bare and a document was started.
func (c *Converter) End() error {
	if c.err != nil {
		return c.err
	}
	if c.state != stateBegun {
		return c.fail(aushapeerr.New(aushapeerr.InvalidState, "End called before Begin or after End"))
	}
	c.state = stateEnded
	if c.docOpen {
		if err := c.closeDoc(); err != nil {
			return c.fail(err)
		}
	}
	level.Debug(c.logger).Log("msg", "converter end")
	return nil
}

// Close releases the underlying sink. Idempotent, safe to call whether or
// not Begin/End ever ran, matching the teacher's destructor-shaped Close
// convention.
func (c *Converter) Close() error {
	if c.sink == nil {
		return nil
	}
	err := c.sink.Close()
	c.sink = nil
	if err != nil {
		return aushapeerr.Wrap(err, aushapeerr.OutputWriteFailure, "closing output sink")
	}
	return nil
}

func (c *Converter) openDoc() error {
	c.buf.Reset()
	c.buf.AddPrologue()
	if err := c.write(); err != nil {
		return err
	}
	c.docOpen = true
	c.firstInDoc = true
	c.eventsInDoc = 0
	c.bytesInDoc = 0
	return nil
}

func (c *Converter) closeDoc() error {
	c.buf.Reset()
	c.buf.AddEpilogue()
	if err := c.write(); err != nil {
		return err
	}
	c.docOpen = false
	return nil
}

func (c *Converter) write() error {
	p := c.buf.Output()
	if len(p) == 0 {
		return nil
	}
	if err := c.sink.Write(p); err != nil {
		return err
	}
	c.buf.Reset()
	return nil
}

// onEvent is the parser callback: it frames, renders and writes one event,
// recording the first error (if any) into the converter's sticky state
// without panicking back through the parser's call stack.
func (c *Converter) onEvent(ev auparse.Event) {
	if c.err != nil {
		return
	}

	switch c.format.EventsPerDoc {
	case format.EventsPerDocBare:
		// no document wrapper; every event stands alone
	case format.EventsPerDocAll:
		// single document opened in Begin, never reopened
	default:
		if c.format.EventsPerDoc > 0 && c.eventsInDoc >= int64(c.format.EventsPerDoc) {
			if err := c.closeDoc(); err != nil {
				c.fail(err)
				return
			}
		}
		if !c.docOpen {
			if err := c.openDoc(); err != nil {
				c.fail(err)
				return
			}
		}
	}

	first := c.firstInDoc
	if c.format.EventsPerDoc == format.EventsPerDocBare {
		// bare events never share an enclosing array, so none of them
		// takes a leading comma
		first = true
	}

	c.buf.Reset()
	padded, err := c.buf.AddEvent(first, ev)
	if err != nil {
		c.fail(aushapeerr.Wrap(err, aushapeerr.ParserFailure, "adding event"))
		return
	}
	if !padded {
		return
	}
	eventLen := len(c.buf.Output())
	if err := c.write(); err != nil {
		c.fail(err)
		return
	}
	c.firstInDoc = false
	c.eventsInDoc++

	if c.format.EventsPerDoc < format.EventsPerDocBare {
		c.bytesInDoc += int64(eventLen)
		threshold := -int64(c.format.EventsPerDoc)
		if c.bytesInDoc >= threshold {
			if err := c.closeDoc(); err != nil {
				c.fail(err)
			}
		}
	}
}
