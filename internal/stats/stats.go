// Package stats implements the run counters surfaced by the --stats
// flag: how many events were emitted, trimmed, dropped empty, or
// recovered from a mid-event parse error, plus total bytes written.
// Fields are plain atomics since a process may run more than one
// converter concurrently, each on a goroutine of its own, even though
// any single converter is itself single-threaded.
package stats

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/olekukonko/tablewriter"
)

// Counters accumulates run-wide totals. The zero value is ready to use.
type Counters struct {
	Events  atomic.Int64
	Trimmed atomic.Int64
	Dropped atomic.Int64
	Errored atomic.Int64
	Bytes   atomic.Int64
}

// Snapshot is a point-in-time copy of Counters, safe to pass around and
// render without further synchronization.
type Snapshot struct {
	Events  int64
	Trimmed int64
	Dropped int64
	Errored int64
	Bytes   int64
}

// Snapshot reads every counter in one pass.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Events:  c.Events.Load(),
		Trimmed: c.Trimmed.Load(),
		Dropped: c.Dropped.Load(),
		Errored: c.Errored.Load(),
		Bytes:   c.Bytes.Load(),
	}
}

// WriteTable renders a snapshot as a two-column table, the form the CLI's
// --stats flag prints to stderr after a run completes.
func (s Snapshot) WriteTable(out *os.File) {
	w := tablewriter.NewWriter(out)
	w.SetHeader([]string{"metric", "value"})
	w.AppendBulk([][]string{
		{"events", itoa(s.Events)},
		{"trimmed", itoa(s.Trimmed)},
		{"dropped", itoa(s.Dropped)},
		{"errored", itoa(s.Errored)},
		{"bytes", itoa(s.Bytes)},
	})
	w.Render()
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
