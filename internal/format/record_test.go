package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribery/aushape-go/internal/gbuf"
	"github.com/scribery/aushape-go/pkg/auparse"
)

func TestRecordXML(t *testing.T) {
	buf := gbuf.New(0)
	Record(buf, flatFormat(LangXML), 0, true, "SYSCALL",
		`type=SYSCALL msg=audit(1.000:1): a0=1`,
		[]auparse.Field{{Name: "a0", Interpreted: "1"}})
	require.Equal(t,
		`<syscall raw="type=SYSCALL msg=audit(1.000:1): a0=1"><a0 i="1"/></syscall>`,
		string(buf.Bytes()))
}

func TestRecordJSON(t *testing.T) {
	buf := gbuf.New(0)
	Record(buf, flatFormat(LangJSON), 0, true, "SYSCALL", `raw line`,
		[]auparse.Field{{Name: "a0", Interpreted: "1"}})
	require.Equal(t,
		`"syscall":{"raw":"raw line","fields":{"a0":["1"]}}`,
		string(buf.Bytes()))
}

func TestRecordJSONWithNoFieldsOmitsFieldsCloseNewline(t *testing.T) {
	buf := gbuf.New(0)
	Record(buf, flatFormat(LangJSON), 0, true, "EOE", `raw`, nil)
	require.Equal(t, `"eoe":{"raw":"raw","fields":{}}`, string(buf.Bytes()))
}

func TestRecordJSONNotFirstAddsComma(t *testing.T) {
	buf := gbuf.New(0)
	Record(buf, flatFormat(LangJSON), 0, false, "EOE", `raw`, nil)
	require.Equal(t, `,"eoe":{"raw":"raw","fields":{}}`, string(buf.Bytes()))
}
