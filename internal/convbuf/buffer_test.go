package convbuf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/stats"
	"github.com/scribery/aushape-go/pkg/auparse"
)

func bareXML() format.Format {
	return format.Format{
		Lang:         format.LangXML,
		FoldLevel:    -1,
		EventsPerDoc: format.EventsPerDocBare,
		MaxEventSize: 4096,
		WithText:     true,
	}
}

func bareJSON() format.Format {
	f := bareXML()
	f.Lang = format.LangJSON
	return f
}

func syscallField(name, interpreted string) auparse.Field {
	return auparse.Field{Name: name, Interpreted: interpreted}
}

func TestAddEventRendersSingleRecordXML(t *testing.T) {
	f := bareXML()
	var st stats.Counters
	b := New(f, &st)

	ts := auparse.Timestamp{Sec: 1000, Milli: 5, Serial: 1}
	event := auparse.Event{
		Timestamp: ts,
		Records: []auparse.Record{
			{
				Type:      "SYSCALL",
				Raw:       "rawline1",
				Timestamp: ts,
				Fields:    []auparse.Field{syscallField("success", "yes")},
			},
		},
	}

	padded, err := b.AddEvent(true, event)
	require.NoError(t, err)
	require.True(t, padded)

	want := `<event serial="1" time="` + formatTimestamp(ts) + `">` +
		`<text><line>rawline1</line></text>` +
		`<data><syscall raw="rawline1"><success i="yes"/></syscall></data>` +
		`</event>`
	require.Equal(t, want, string(b.Output()))
	require.Equal(t, int64(1), st.Events.Load())
	require.Equal(t, int64(0), st.Dropped.Load())
	require.Equal(t, int64(0), st.Errored.Load())
}

func TestAddEventRendersSingleRecordJSON(t *testing.T) {
	f := bareJSON()
	var st stats.Counters
	b := New(f, &st)

	ts := auparse.Timestamp{Sec: 1000, Milli: 5, Serial: 1}
	event := auparse.Event{
		Timestamp: ts,
		Records: []auparse.Record{
			{
				Type:      "SYSCALL",
				Raw:       "rawline1",
				Timestamp: ts,
				Fields:    []auparse.Field{syscallField("success", "yes")},
			},
		},
	}

	padded, err := b.AddEvent(true, event)
	require.NoError(t, err)
	require.True(t, padded)

	want := `{"serial":1,"time":"` + formatTimestamp(ts) + `",` +
		`"text":["rawline1"],` +
		`"data":{"syscall":{"raw":"rawline1","fields":{"success":["yes"]}}}}`
	require.Equal(t, want, string(b.Output()))
}

func TestAddEventDropsZeroRecordEvent(t *testing.T) {
	f := bareXML()
	var st stats.Counters
	b := New(f, &st)

	padded, err := b.AddEvent(true, auparse.Event{Timestamp: auparse.Timestamp{Serial: 1}})
	require.NoError(t, err)
	require.False(t, padded)
	require.Equal(t, 0, len(b.Output()))
	require.Equal(t, int64(1), st.Dropped.Load())
	require.Equal(t, int64(0), st.Events.Load())
}

func TestAddEventRecoversFromExecveError(t *testing.T) {
	f := bareXML()
	var st stats.Counters
	b := New(f, &st)

	ts := auparse.Timestamp{Serial: 1}
	event := auparse.Event{
		Timestamp: ts,
		Records: []auparse.Record{
			{
				Type: "EXECVE",
				Raw:  "execve-line",
				Fields: []auparse.Field{
					syscallField("argc", "1"),
					syscallField("argc", "1"),
				},
			},
		},
	}

	padded, err := b.AddEvent(true, event)
	require.NoError(t, err)
	require.True(t, padded)

	out := string(b.Output())
	require.Contains(t, out, `error="`)
	require.NotContains(t, out, "<data>")
	require.Equal(t, int64(1), st.Errored.Load())
	require.Equal(t, int64(0), st.Trimmed.Load())
}

func TestAddEventTrimsOversizedEvent(t *testing.T) {
	f := bareXML()
	f.MaxEventSize = 150
	var st stats.Counters
	b := New(f, &st)

	longValue := strings.Repeat("x", 400)
	ts := auparse.Timestamp{Serial: 1}
	event := auparse.Event{
		Timestamp: ts,
		Records: []auparse.Record{
			{Type: "SYSCALL", Raw: "first", Fields: []auparse.Field{syscallField("a", "1")}},
			{Type: "LOGIN", Raw: strings.Repeat("y", 200), Fields: []auparse.Field{syscallField("b", longValue)}},
		},
	}

	padded, err := b.AddEvent(true, event)
	require.NoError(t, err)
	require.True(t, padded)

	out := b.Output()
	require.Less(t, len(out), 400, "trimming should have shed most of the 600+ byte untrimmed payload")
	require.Contains(t, string(out), ` trimmed=""`)
	require.Equal(t, int64(1), st.Trimmed.Load())
}

func TestAddEventOmitsTextWhenWithTextFalse(t *testing.T) {
	f := bareXML()
	f.WithText = false
	var st stats.Counters
	b := New(f, &st)

	event := auparse.Event{
		Timestamp: auparse.Timestamp{Serial: 1},
		Records: []auparse.Record{
			{Type: "SYSCALL", Raw: "rawline1", Fields: []auparse.Field{syscallField("success", "yes")}},
		},
	}

	_, err := b.AddEvent(true, event)
	require.NoError(t, err)
	require.NotContains(t, string(b.Output()), "<text>")
}
