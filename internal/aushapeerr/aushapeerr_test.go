package aushapeerr

import (
	"testing"

	goerrors "errors"

	"github.com/stretchr/testify/require"
)

func TestStickyKinds(t *testing.T) {
	require.True(t, InvalidArgument.Sticky())
	require.True(t, InvalidState.Sticky())
	require.True(t, AllocationFailure.Sticky())
	require.True(t, OutputWriteFailure.Sticky())
	require.False(t, ParserFailure.Sticky())
	require.False(t, InvalidExecve.Sticky())
	require.False(t, InvalidPath.Sticky())
	require.False(t, RepeatedRecord.Sticky())
}

func TestWrapPreservesCauseAndKind(t *testing.T) {
	cause := goerrors.New("boom")
	err := Wrap(cause, InvalidExecve, "parsing a0")
	require.Error(t, err)
	require.Equal(t, InvalidExecve, err.Kind)
	require.ErrorIs(t, err, cause)

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, InvalidExecve, kind)
}

func TestWrapNilReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(nil, InvalidPath, "x"))
}

func TestKindOfFalseForPlainError(t *testing.T) {
	_, ok := KindOf(goerrors.New("plain"))
	require.False(t, ok)
}

func TestKindStringsMatchDescriptions(t *testing.T) {
	require.Equal(t, "Invalid execve record sequence encountered", InvalidExecve.String())
	require.Equal(t, "invalid path record sequence encountered", InvalidPath.String())
	require.Equal(t, "repeated record", RepeatedRecord.String())
}
