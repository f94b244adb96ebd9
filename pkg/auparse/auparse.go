// Package auparse defines the interface the converter uses to consume an
// already-lexed Linux audit log: a Parser that turns raw bytes into Events,
// each carrying an ordered sequence of Records, each carrying an ordered
// sequence of Fields. The real kernel wire format and its field
// interpretation tables (UID → user name, syscall number → name, and so
// on) live outside this module; see internal/alog for the one concrete
// Parser this repository ships.
package auparse

// FieldKind distinguishes field values that never carry a meaningful raw
// form (escaped strings, escaped keys) from ordinary values, matching the
// distinction auparse itself makes in auparse_get_field_type.
type FieldKind int

const (
	// KindNormal fields may carry both a raw and an interpreted value.
	KindNormal FieldKind = iota
	// KindEscaped fields are reported only in interpreted form; their raw
	// form is never emitted.
	KindEscaped
)

// Field is one key=value pair inside a Record.
type Field struct {
	Name string
	Kind FieldKind

	// Interpreted is the human-readable value. Always present.
	Interpreted string

	// Raw is the as-transmitted value. HasRaw is false when Kind is
	// KindEscaped, or when Raw would be identical to Interpreted — the
	// pair collapses to the interpreted form alone in that case.
	Raw    string
	HasRaw bool
}

// Timestamp identifies the event a record belongs to.
type Timestamp struct {
	Sec    int64
	Milli  uint32
	Serial uint64

	// Host is the node name, empty if the record stream carries none.
	Host string
}

// Record is one line of audit log output.
type Record struct {
	// Type is the upper-case record type name as transmitted, e.g.
	// "SYSCALL", "EXECVE", "PATH".
	Type string

	// Raw is the verbatim text line the record was parsed from, without
	// a trailing newline.
	Raw string

	Timestamp Timestamp
	Fields    []Field
}

// Event is a sequence of Records sharing one Timestamp triple.
type Event struct {
	Timestamp Timestamp
	Records   []Record
}

// Parser turns a byte stream into Events. Implementations are free to
// buffer internally between Feed calls; Flush forces any pending partial
// record to be delivered (or discarded, if it cannot form a complete
// record) before returning.
type Parser interface {
	// Feed appends bytes to the parser's input. Complete events are
	// reported synchronously, before Feed returns, via the callback
	// registered with OnEvent.
	Feed(p []byte) error

	// Flush forces delivery of any event completed by input seen so far
	// but not yet reported, then clears internal buffering.
	Flush() error

	// OnEvent registers the callback invoked once per complete Event.
	// Only one callback may be registered at a time; a later call
	// replaces the previous one.
	OnEvent(fn func(Event))
}
