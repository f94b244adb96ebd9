// Command aushape reads Linux audit log text from a file or stdin and
// renders it as bounded-size JSON or XML documents on a file or syslog
// sink, one converter run per invocation.
package main

import (
	"fmt"
	"io"
	"log/syslog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/scribery/aushape-go/internal/alog"
	"github.com/scribery/aushape-go/internal/collector"
	"github.com/scribery/aushape-go/internal/converter"
	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/output"
	"github.com/scribery/aushape-go/internal/stats"
)

// defaultMaxEventSize is the per-event byte budget used since the flag
// set inherited from original_source/src/aushape.c never exposed one.
const defaultMaxEventSize = 64 * 1024

var version = "dev"

type cli struct {
	Input string `arg:"" optional:"" default:"-" help:"path to read audit log text from, or - for stdin."`

	Lang         string `short:"l" name:"lang" enum:"xml,json" default:"json" help:"output language."`
	EventsPerDoc string `name:"events-per-doc" default:"all" help:"none, all, N, or -N (bytes per document)."`
	Fold         string `name:"fold" default:"5" help:"all, none, or N (nesting depth folded onto one line)."`
	Indent       int64  `name:"indent" default:"4" help:"spaces per nesting level."`
	WithRaw      bool   `name:"with-raw" help:"echo each record's raw source line inside its event."`

	Output         string `short:"o" name:"output" enum:"file,syslog" default:"file" help:"output sink kind."`
	File           string `short:"f" name:"file" default:"-" help:"output file path, or - for stdout (output=file only)."`
	SyslogFacility string `name:"syslog-facility" default:"authpriv" help:"syslog facility name (output=syslog only)."`
	SyslogPriority string `name:"syslog-priority" default:"info" help:"syslog severity name (output=syslog only)."`

	RecordRule []string `name:"record-rule" help:"TYPE=KIND registry override, repeatable."`
	Stats      bool     `name:"stats" help:"print a run-summary table to stderr on clean exit."`
	Quiet      bool     `short:"q" name:"quiet" help:"only log errors."`

	Version kong.VersionFlag `short:"v" help:"print version and exit."`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Vars{"version": version}, kong.UsageOnError())

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if c.Quiet {
		logger = level.NewFilter(logger, level.AllowError())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	if err := run(logger, c); err != nil {
		level.Error(logger).Log("msg", "aushape failed", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger, c cli) error {
	f, err := parseFormat(c)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(c.Input)
	if err != nil {
		return err
	}
	defer closeIn()

	sink, err := openOutput(c)
	if err != nil {
		return err
	}

	st := &stats.Counters{}
	parser := alog.New()
	conv := converter.New(logger, f, parser, sink, st)

	if err := applyRecordRules(conv, c.RecordRule); err != nil {
		_ = conv.Close()
		return err
	}

	if err := runConverter(conv, in); err != nil {
		return err
	}

	if c.Stats {
		st.Snapshot().WriteTable(os.Stderr)
	}
	return nil
}

func runConverter(conv *converter.Converter, in io.Reader) error {
	if err := conv.Begin(); err != nil {
		return err
	}

	buf := make([]byte, 64*1024)
	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			// Input logs recoverable failures itself and keeps the
			// converter usable; a sticky failure just makes every
			// later call a cheap no-op, so there is nothing more to
			// do with its return value here.
			_ = conv.Input(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = conv.Close()
			return fmt.Errorf("reading input: %w", readErr)
		}
	}

	if err := conv.Flush(); err != nil {
		_ = conv.Close()
		return err
	}
	if err := conv.End(); err != nil {
		_ = conv.Close()
		return err
	}
	return conv.Close()
}

func parseFormat(c cli) (format.Format, error) {
	lang := format.LangJSON
	if c.Lang == "xml" {
		lang = format.LangXML
	}

	eventsPerDoc, err := parseEventsPerDoc(c.EventsPerDoc)
	if err != nil {
		return format.Format{}, err
	}

	foldLevel, err := parseFold(c.Fold)
	if err != nil {
		return format.Format{}, err
	}

	f := format.Format{
		Lang:         lang,
		FoldLevel:    foldLevel,
		InitIndent:   0,
		NestIndent:   c.Indent,
		EventsPerDoc: eventsPerDoc,
		WithText:     c.WithRaw,
		MaxEventSize: defaultMaxEventSize,
	}
	if !f.Valid() {
		return format.Format{}, fmt.Errorf("invalid format configuration")
	}
	return f, nil
}

func parseEventsPerDoc(s string) (format.EventsPerDoc, error) {
	switch s {
	case "none":
		return format.EventsPerDocBare, nil
	case "all":
		return format.EventsPerDocAll, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid --events-per-doc value %q", s)
		}
		return format.EventsPerDoc(n), nil
	}
}

func parseFold(s string) (int64, error) {
	switch s {
	case "all":
		return format.FoldAll, nil
	case "none":
		return math.MaxInt64, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid --fold value %q", s)
		}
		return n, nil
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input %q: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(c cli) (output.Sink, error) {
	switch c.Output {
	case "syslog":
		facility, ok := output.FacilityFromName(c.SyslogFacility)
		if !ok {
			return nil, fmt.Errorf("unknown --syslog-facility %q", c.SyslogFacility)
		}
		severity, ok := output.SeverityFromName(c.SyslogPriority)
		if !ok {
			return nil, fmt.Errorf("unknown --syslog-priority %q", c.SyslogPriority)
		}
		w, err := syslog.New(facility|severity, "aushape")
		if err != nil {
			return nil, fmt.Errorf("opening syslog: %w", err)
		}
		return output.NewSyslog(w), nil
	default:
		if c.File == "-" {
			return output.NewFile(os.Stdout, false), nil
		}
		f, err := os.Create(c.File)
		if err != nil {
			return nil, fmt.Errorf("opening output file %q: %w", c.File, err)
		}
		return output.NewFile(f, true), nil
	}
}

// applyRecordRules installs every --record-rule TYPE=KIND override on
// conv's collector registry. Must run before Begin.
func applyRecordRules(conv *converter.Converter, rules []string) error {
	for _, rule := range rules {
		eq := strings.IndexByte(rule, '=')
		if eq < 0 {
			return fmt.Errorf("malformed --record-rule %q, want TYPE=KIND", rule)
		}
		typeName, kindName := rule[:eq], rule[eq+1:]
		kind, err := collector.ParseKind(kindName)
		if err != nil {
			return fmt.Errorf("--record-rule %q: %w", rule, err)
		}
		conv.OverrideRecordRule(strings.ToUpper(typeName), kind, strings.ToLower(typeName))
	}
	return nil
}
