package output

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileWritesAndClosesWhenOwned(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "aushape-output-*")
	require.NoError(t, err)

	sink := NewFile(f, true)
	require.True(t, sink.IsContinuous())
	require.NoError(t, sink.Write([]byte("<event/>")))
	require.NoError(t, sink.Close())

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	require.Equal(t, "<event/>", string(got))

	require.Error(t, sink.Write([]byte("x")))
}

func TestFileCloseIsNoopWhenNotOwned(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "aushape-output-*")
	require.NoError(t, err)
	defer f.Close()

	sink := NewFile(f, false)
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Write([]byte("still open")))
}
