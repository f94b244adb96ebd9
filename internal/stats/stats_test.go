package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotReadsAllCounters(t *testing.T) {
	var c Counters
	c.Events.Add(3)
	c.Trimmed.Add(1)
	c.Dropped.Add(2)
	c.Errored.Add(1)
	c.Bytes.Add(4096)

	s := c.Snapshot()
	require.Equal(t, Snapshot{Events: 3, Trimmed: 1, Dropped: 2, Errored: 1, Bytes: 4096}, s)
}
