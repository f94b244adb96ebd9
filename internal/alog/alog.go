// Package alog is a reference implementation of pkg/auparse.Parser for the
// well-known auditd text wire format used by ausearch/aureport:
//
//	[node=HOST ]type=NAME msg=audit(SEC.MILLI:SERIAL): k=v k=v(interpreted) ...
//
// It is intentionally minimal: it does not interpret field semantics
// (uid → user name, syscall number → name) beyond what the line already
// spells out as a raw(interpreted) pair. It exists to exercise the
// collector/formatter pipeline end to end without a cgo dependency on the
// real libauparse.
package alog

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/scribery/aushape-go/pkg/auparse"
)

// Parser implements auparse.Parser by tokenizing complete lines as they
// arrive. Records sharing a Timestamp are grouped into one Event, flushed
// to the registered callback as soon as a record with a different
// Timestamp is seen, or on Flush/a later Feed call that starts a new
// group.
type Parser struct {
	pending []byte
	onEvent func(auparse.Event)

	haveGroup bool
	group     auparse.Event
}

// New returns a ready-to-use Parser.
func New() *Parser {
	return &Parser{}
}

func (p *Parser) OnEvent(fn func(auparse.Event)) {
	p.onEvent = fn
}

// Feed appends b to the parser's buffer and processes every complete
// (newline-terminated) line found so far. A trailing partial line is held
// until more bytes or a Flush arrives.
func (p *Parser) Feed(b []byte) error {
	p.pending = append(p.pending, b...)
	for {
		i := indexByte(p.pending, '\n')
		if i < 0 {
			break
		}
		line := string(p.pending[:i])
		p.pending = p.pending[i+1:]
		if err := p.processLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Flush discards any incomplete trailing line (it cannot form a record)
// and delivers the current group, if any, as a final Event.
func (p *Parser) Flush() error {
	p.pending = nil
	p.emitGroup()
	return nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func (p *Parser) processLine(line string) error {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	rec, err := parseRecord(line)
	if err != nil {
		return errors.Wrapf(err, "parsing audit line %q", line)
	}

	if p.haveGroup && p.group.Timestamp != rec.Timestamp {
		p.emitGroup()
	}
	if !p.haveGroup {
		p.haveGroup = true
		p.group = auparse.Event{Timestamp: rec.Timestamp}
	}
	p.group.Records = append(p.group.Records, rec)
	return nil
}

func (p *Parser) emitGroup() {
	if !p.haveGroup {
		return
	}
	ev := p.group
	p.haveGroup = false
	p.group = auparse.Event{}
	if p.onEvent != nil {
		p.onEvent(ev)
	}
}

// parseRecord tokenizes one audit text line into a Record.
func parseRecord(line string) (auparse.Record, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return auparse.Record{}, err
	}
	if len(tokens) == 0 {
		return auparse.Record{}, errors.New("empty record")
	}

	rec := auparse.Record{Raw: line}
	idx := 0

	if name, val, ok := splitAssignment(tokens[idx]); ok && name == "node" {
		rec.Timestamp.Host = val
		idx++
	}

	if idx >= len(tokens) {
		return auparse.Record{}, errors.New("missing type= field")
	}
	name, val, ok := splitAssignment(tokens[idx])
	if !ok || name != "type" {
		return auparse.Record{}, errors.Errorf("expected type= field, got %q", tokens[idx])
	}
	rec.Type = val
	idx++

	if idx >= len(tokens) {
		return auparse.Record{}, errors.New("missing msg=audit(...) field")
	}
	ts, err := parseMsgToken(tokens[idx])
	if err != nil {
		return auparse.Record{}, err
	}
	ts.Host = rec.Timestamp.Host
	rec.Timestamp = ts
	idx++

	for ; idx < len(tokens); idx++ {
		f, err := parseFieldToken(tokens[idx])
		if err != nil {
			return auparse.Record{}, err
		}
		rec.Fields = append(rec.Fields, f)
	}

	return rec, nil
}

// parseMsgToken parses a "msg=audit(SEC.MILLI:SERIAL):" token.
func parseMsgToken(tok string) (auparse.Timestamp, error) {
	const prefix = "msg=audit("
	if !strings.HasPrefix(tok, prefix) || !strings.HasSuffix(tok, "):") {
		return auparse.Timestamp{}, errors.Errorf("malformed msg= field %q", tok)
	}
	body := tok[len(prefix) : len(tok)-len("):")]
	dot := strings.IndexByte(body, '.')
	colon := strings.LastIndexByte(body, ':')
	if dot < 0 || colon < 0 || colon < dot {
		return auparse.Timestamp{}, errors.Errorf("malformed audit timestamp %q", body)
	}
	sec, err := strconv.ParseInt(body[:dot], 10, 64)
	if err != nil {
		return auparse.Timestamp{}, errors.Wrap(err, "parsing seconds")
	}
	milli, err := strconv.ParseUint(body[dot+1:colon], 10, 32)
	if err != nil {
		return auparse.Timestamp{}, errors.Wrap(err, "parsing milliseconds")
	}
	serial, err := strconv.ParseUint(body[colon+1:], 10, 64)
	if err != nil {
		return auparse.Timestamp{}, errors.Wrap(err, "parsing serial")
	}
	return auparse.Timestamp{Sec: sec, Milli: uint32(milli), Serial: serial}, nil
}

// parseFieldToken parses "name=value" or "name=value(interpreted)" or
// "name=\"quoted\"". Escaped-string fields (those whose raw value is
// already human-readable text in quotes with no separate interpretation)
// are reported as KindEscaped with no raw form, matching auparse's
// AUPARSE_TYPE_ESCAPED/ESCAPED_KEY handling.
func parseFieldToken(tok string) (auparse.Field, error) {
	eq := strings.IndexByte(tok, '=')
	if eq < 0 {
		return auparse.Field{}, errors.Errorf("malformed field %q", tok)
	}
	name := tok[:eq]
	rest := tok[eq+1:]
	if name == "" {
		return auparse.Field{}, errors.Errorf("malformed field %q", tok)
	}

	if strings.HasPrefix(rest, `"`) {
		val, ok := unquote(rest)
		if !ok {
			return auparse.Field{}, errors.Errorf("unterminated quoted value in %q", tok)
		}
		return auparse.Field{Name: name, Kind: auparse.KindEscaped, Interpreted: val}, nil
	}

	if open := strings.IndexByte(rest, '('); open >= 0 && strings.HasSuffix(rest, ")") {
		raw := rest[:open]
		interp := rest[open+1 : len(rest)-1]
		if raw == interp {
			return auparse.Field{Name: name, Interpreted: interp}, nil
		}
		return auparse.Field{Name: name, Interpreted: interp, Raw: raw, HasRaw: true}, nil
	}

	return auparse.Field{Name: name, Interpreted: rest}, nil
}

func splitAssignment(tok string) (name, val string, ok bool) {
	eq := strings.IndexByte(tok, '=')
	if eq < 0 {
		return "", "", false
	}
	return tok[:eq], tok[eq+1:], true
}

// unquote consumes a leading `"` from s and returns the content up to the
// next unescaped `"`, honoring backslash-escaping of `"` and `\`.
func unquote(s string) (string, bool) {
	if len(s) == 0 || s[0] != '"' {
		return "", false
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		if c == '"' {
			return b.String(), true
		}
		b.WriteByte(c)
	}
	return "", false
}

// tokenize splits a line on whitespace, keeping double-quoted spans
// (which may contain spaces or control bytes, including NUL) intact.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == '\\' && inQuote && i+1 < len(line):
			cur.WriteByte(c)
			i++
			cur.WriteByte(line[i])
		case c == ' ' && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	if inQuote {
		return nil, errors.Errorf("unterminated quote in line %q", line)
	}
	flush()
	return tokens, nil
}
