package collector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribery/aushape-go/internal/aushapeerr"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/pkg/auparse"
)

func TestRegistryResolvesBuiltInTypes(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	r := NewRegistry(flatFormat(), tree)

	require.IsType(t, &Execve{}, r.Resolve("EXECVE"))
	require.IsType(t, &Path{}, r.Resolve("PATH"))
	require.IsType(t, &Repeated{}, r.Resolve("OBJ_PID"))
	require.IsType(t, &Repeated{}, r.Resolve("AVC"))
	require.IsType(t, &Drop{}, r.Resolve("EOE"))
	require.IsType(t, &Single{}, r.Resolve("SYSCALL"))
	require.Same(t, r.Resolve("SYSCALL"), r.Resolve("LOGIN"))
}

func TestRegistryFallbackRejectsRepeatedType(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	r := NewRegistry(flatFormat(), tree)

	pcount := 0
	require.NoError(t, r.Resolve("SYSCALL").Add(&pcount, 0, 1, auparse.Record{Type: "syscall", Raw: "r1"}))
	err := r.Resolve("SYSCALL").Add(&pcount, 0, 2, auparse.Record{Type: "syscall", Raw: "r2"})
	require.Error(t, err)
	kind, ok := aushapeerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aushapeerr.RepeatedRecord, kind)
}

func TestRegistryResolveIsCaseInsensitive(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	r := NewRegistry(flatFormat(), tree)
	require.Same(t, r.Resolve("execve"), r.Resolve("EXECVE"))
}

func TestRegistryOverrideDetachesOnlyNamedType(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	r := NewRegistry(flatFormat(), tree)

	original := r.Resolve("AVC")
	r.Override(flatFormat(), tree, "OBJ_PID", KindDrop, "")

	require.IsType(t, &Drop{}, r.Resolve("OBJ_PID"))
	require.Same(t, original, r.Resolve("AVC"))
}

func TestParseKindRejectsUnknown(t *testing.T) {
	_, err := ParseKind("bogus")
	require.Error(t, err)

	k, err := ParseKind("execve")
	require.NoError(t, err)
	require.Equal(t, KindExecve, k)
}

func TestRegistryCollectorsDeduplicatesSharedInstances(t *testing.T) {
	tree := gbtree.New(0, 0, 0)
	r := NewRegistry(flatFormat(), tree)

	all := r.Collectors()
	seen := make(map[Collector]bool)
	for _, c := range all {
		require.False(t, seen[c], "collector listed twice")
		seen[c] = true
	}
	require.Len(t, all, 6) // execve, path, obj_pid, avc, eoe, fallback
}
