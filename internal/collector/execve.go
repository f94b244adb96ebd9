package collector

import (
	"strconv"
	"strings"

	"github.com/scribery/aushape-go/internal/aushapeerr"
	"github.com/scribery/aushape-go/internal/escape"
	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/internal/gbuf"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Execve reassembles the argc/aN/aN_len/aN[M] field sequence the kernel
// splits a single execve(2) call across, possibly over several EXECVE
// records in one event, into one "<execve raw=\"...\">args</execve>"
// fragment. A long or binary argument is reported as aN_len followed by
// one or more aN[slice] fragments instead of a plain aN; Execve
// concatenates those slices back into the single argument they came
// from.
type Execve struct {
	format format.Format
	tree   *gbtree.Tree

	raw  *gbuf.Buffer
	args *gbuf.Buffer

	argNum int64 // from argc=; 0 until seen
	argIdx int64 // next argument index Add expects to fill

	gotLen   bool  // mid a slice sequence for argIdx
	sliceIdx int64 // next expected slice number
	lenTotal int64 // declared total length from aN_len=
	lenRead  int64 // bytes of that argument read back so far
}

// NewExecve returns an empty Execve collector.
func NewExecve(f format.Format, tree *gbtree.Tree) *Execve {
	return &Execve{format: f, tree: tree, raw: gbuf.New(0), args: gbuf.New(0)}
}

func (e *Execve) IsEmpty() bool {
	return e.argNum == 0
}

func (e *Execve) Empty() {
	e.raw.Reset()
	e.args.Reset()
	e.argNum = 0
	e.argIdx = 0
	e.gotLen = false
	e.sliceIdx = 0
	e.lenTotal = 0
	e.lenRead = 0
}

func (e *Execve) Add(pcount *int, level int64, prio int64, rec auparse.Record) error {
	l := level
	if e.format.Lang == format.LangXML {
		l++
	} else {
		l += 2
	}

	if e.argIdx > 0 || e.raw.Len() > 0 {
		e.raw.AppendByte('\n')
	}
	e.raw.AppendString(rec.Raw)

	for _, field := range rec.Fields {
		name := field.Name
		switch {
		case name == "type" || name == "node":
			continue
		case name == "argc":
			if err := e.addArgc(field); err != nil {
				return err
			}
		default:
			if idx, ok := parseArgIndex(name); ok {
				if err := e.addArg(l, idx, field); err != nil {
					return err
				}
				continue
			}
			if idx, ok := parseArgLenIndex(name); ok {
				if err := e.addArgLen(l, idx, field); err != nil {
					return err
				}
				continue
			}
			if idx, slice, ok := parseArgSlice(name); ok {
				if err := e.addArgSlice(l, idx, slice, field); err != nil {
					return err
				}
				continue
			}
			return aushapeerr.Newf(aushapeerr.InvalidExecve,
				"unexpected execve field %q", name)
		}
	}
	return nil
}

func (e *Execve) addArgc(field auparse.Field) error {
	if e.argNum != 0 {
		return aushapeerr.New(aushapeerr.InvalidExecve, "duplicate argc field in execve sequence")
	}
	n, ok := parseUintExact(field.Interpreted)
	if !ok || n == 0 {
		return aushapeerr.Newf(aushapeerr.InvalidExecve, "malformed argc value %q", field.Interpreted)
	}
	e.argNum = n
	return nil
}

func (e *Execve) addArg(level int64, idx int64, field auparse.Field) error {
	if e.argNum == 0 || idx < e.argIdx || idx >= e.argNum || e.gotLen {
		return aushapeerr.Newf(aushapeerr.InvalidExecve, "out-of-sequence argument %d", idx)
	}
	for e.argIdx < idx {
		e.addArgStr(level, "")
	}
	e.addArgStr(level, field.Interpreted)
	return nil
}

func (e *Execve) addArgLen(level int64, idx int64, field auparse.Field) error {
	if e.argNum == 0 || idx < e.argIdx || idx >= e.argNum || e.gotLen {
		return aushapeerr.Newf(aushapeerr.InvalidExecve, "out-of-sequence length for argument %d", idx)
	}
	for e.argIdx < idx {
		e.addArgStr(level, "")
	}
	n, ok := parseUintExact(field.Interpreted)
	if !ok {
		return aushapeerr.Newf(aushapeerr.InvalidExecve, "malformed length for argument %d", idx)
	}
	e.gotLen = true
	e.sliceIdx = 0
	e.lenTotal = n
	e.lenRead = 0
	return nil
}

func (e *Execve) addArgSlice(level int64, idx, slice int64, field auparse.Field) error {
	if !e.gotLen || idx != e.argIdx || slice != e.sliceIdx {
		return aushapeerr.Newf(aushapeerr.InvalidExecve, "out-of-sequence slice %d of argument %d", slice, idx)
	}

	length := int64(len(field.Interpreted))
	if field.HasRaw {
		rawLen := int64(len(field.Raw))
		if length == rawLen/2 {
			length = rawLen
		}
	}
	if e.lenRead+length > e.lenTotal {
		return aushapeerr.Newf(aushapeerr.InvalidExecve, "argument %d slices exceed declared length", idx)
	}

	if slice == 0 {
		if e.format.Lang == format.LangXML {
			format.SpaceOpening(e.args, e.format, level)
			e.args.AppendString(`<a i="`)
		} else {
			if e.argIdx > 0 {
				e.args.AppendByte(',')
			}
			format.SpaceOpening(e.args, e.format, level)
			e.args.AppendByte('"')
		}
	}

	if e.format.Lang == format.LangXML {
		escape.XML(e.args, []byte(field.Interpreted))
	} else {
		escape.JSON(e.args, []byte(field.Interpreted))
	}
	e.lenRead += length

	if e.lenRead == e.lenTotal {
		if e.format.Lang == format.LangXML {
			e.args.AppendString(`"/>`)
		} else {
			e.args.AppendByte('"')
		}
		e.gotLen = false
		e.sliceIdx = 0
		e.lenTotal = 0
		e.lenRead = 0
		e.argIdx++
	} else {
		e.sliceIdx++
	}
	return nil
}

func (e *Execve) addArgStr(level int64, str string) {
	if e.format.Lang == format.LangXML {
		format.SpaceOpening(e.args, e.format, level)
		e.args.AppendString(`<a i="`)
		escape.XML(e.args, []byte(str))
		e.args.AppendString(`"/>`)
	} else {
		if e.argIdx > 0 {
			e.args.AppendByte(',')
		}
		format.SpaceOpening(e.args, e.format, level)
		e.args.AppendByte('"')
		escape.JSON(e.args, []byte(str))
		e.args.AppendByte('"')
	}
	e.argIdx++
}

func (e *Execve) End(pcount *int, level int64, prio int64) error {
	if e.IsEmpty() {
		return nil
	}
	if e.gotLen && e.lenRead < e.lenTotal {
		return aushapeerr.New(aushapeerr.InvalidExecve, "execve sequence ended mid-argument")
	}

	l := level
	buf := e.tree.Text()

	if e.format.Lang == format.LangXML {
		format.SpaceOpening(buf, e.format, l)
		buf.AppendString(`<execve raw="`)
		escape.XML(buf, e.raw.Bytes())
		buf.AppendString(`">`)
	} else {
		if *pcount > 0 {
			buf.AppendByte(',')
		}
		format.SpaceOpening(buf, e.format, l)
		buf.AppendString(`"execve":{`)
		l++
		format.SpaceOpening(buf, e.format, l)
		buf.AppendString(`"raw":"`)
		escape.JSON(buf, e.raw.Bytes())
		buf.AppendString(`",`)
		format.SpaceOpening(buf, e.format, l)
		buf.AppendString(`"args":[`)
	}
	l++

	for e.argIdx < e.argNum {
		e.addArgStr(l, "")
	}
	buf.AppendBuffer(e.args)
	l--

	if e.format.Lang == format.LangXML {
		format.SpaceClosing(buf, e.format, l)
		buf.AppendString("</execve>")
	} else {
		if e.args.Len() > 0 {
			format.SpaceClosing(buf, e.format, l)
		}
		buf.AppendByte(']')
		l--
		format.SpaceClosing(buf, e.format, l)
		buf.AppendByte('}')
	}

	e.tree.AppendText(prio)
	*pcount++
	return nil
}

func parseArgIndex(name string) (int64, bool) {
	if len(name) < 2 || name[0] != 'a' {
		return 0, false
	}
	return parseUintExact(name[1:])
}

func parseArgLenIndex(name string) (int64, bool) {
	const suffix = "_len"
	if !strings.HasPrefix(name, "a") || !strings.HasSuffix(name, suffix) || len(name) <= 1+len(suffix) {
		return 0, false
	}
	return parseUintExact(name[1 : len(name)-len(suffix)])
}

func parseArgSlice(name string) (int64, int64, bool) {
	if !strings.HasPrefix(name, "a") {
		return 0, 0, false
	}
	rest := name[1:]
	if len(rest) == 0 || rest[len(rest)-1] != ']' {
		return 0, 0, false
	}
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return 0, 0, false
	}
	idx, ok := parseUintExact(rest[:open])
	if !ok {
		return 0, 0, false
	}
	slice, ok := parseUintExact(rest[open+1 : len(rest)-1])
	if !ok {
		return 0, 0, false
	}
	return idx, slice, true
}

func parseUintExact(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
