package collector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribery/aushape-go/pkg/auparse"
)

func TestDropDiscardsEverything(t *testing.T) {
	d := NewDrop()
	require.True(t, d.IsEmpty())

	pcount := 0
	require.NoError(t, d.Add(&pcount, 0, 1, auparse.Record{Type: "EOE", Raw: "r"}))
	require.NoError(t, d.End(&pcount, 0, 1))
	require.Equal(t, 0, pcount)
	require.True(t, d.IsEmpty())
}
