package collector

import (
	"fmt"
	"strings"

	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Kind names one of the built-in collector behaviors, used both by the
// default registry and by the --record-rule command-line override.
type Kind string

const (
	KindSingle   Kind = "single"
	KindUnique   Kind = "unique"
	KindRepeated Kind = "repeated"
	KindExecve   Kind = "execve"
	KindPath     Kind = "path"
	KindDrop     Kind = "drop"
)

// ParseKind validates a --record-rule TYPE=KIND override's KIND half.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSingle, KindUnique, KindRepeated, KindExecve, KindPath, KindDrop:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown collector kind %q", s)
	}
}

// Registry maps upper-cased record type names to the Collector instance
// responsible for them, with a default collector for any type not named
// explicitly. It keeps its own registration-ordered collector list rather
// than deriving one from map iteration: several collectors can share one
// commit priority within an event (the current record count, assigned by
// convbuf), so the order Collectors returns them in is what fixes their
// relative position in the rendered output, and that order must be
// deterministic.
type Registry struct {
	byType   map[string]Collector
	ordered  []Collector
	fallback Collector
}

// NewRegistry builds the default registry from spec.md's built-in record
// rules: EXECVE and PATH get their dedicated aggregators, OBJ_PID and AVC
// are folded into repeated-item containers, EOE is dropped, and every
// other type not named explicitly falls through to a collector shared
// across all of them, rejecting a second record of a type it has already
// seen this event (mirroring the NULL-name catch-all rule, which uses the
// unique-record behavior rather than the tolerant one).
func NewRegistry(f format.Format, tree *gbtree.Tree) *Registry {
	r := &Registry{byType: make(map[string]Collector)}

	execve := NewExecve(f, tree)
	path := NewPath(f, tree)
	objPID := NewRepeated(f, tree, "obj_pid")
	avc := NewRepeated(f, tree, "avc")
	eoe := NewDrop()
	fallback := NewUnique(f, tree)

	r.register("EXECVE", execve)
	r.register("PATH", path)
	r.register("OBJ_PID", objPID)
	r.register("AVC", avc)
	r.register("EOE", eoe)
	r.fallback = fallback

	return r
}

func (r *Registry) register(recordType string, c Collector) {
	r.byType[recordType] = c
	r.ordered = append(r.ordered, c)
}

// Override replaces (or adds) the rule for recordType, constructing a
// fresh collector of the given kind. name is used for Repeated's
// container name; it is ignored by every other kind. Only recordType is
// rerouted: every other type keeps its existing collector, including the
// fallback shared by all unlisted types.
func (r *Registry) Override(f format.Format, tree *gbtree.Tree, recordType string, kind Kind, name string) {
	recordType = strings.ToUpper(recordType)
	var c Collector
	switch kind {
	case KindSingle:
		c = NewSingle(f, tree)
	case KindUnique:
		c = NewUnique(f, tree)
	case KindRepeated:
		c = NewRepeated(f, tree, name)
	case KindExecve:
		c = NewExecve(f, tree)
	case KindPath:
		c = NewPath(f, tree)
	case KindDrop:
		c = NewDrop()
	}
	r.register(recordType, c)
}

// Resolve returns the collector responsible for recordType.
func (r *Registry) Resolve(recordType string) Collector {
	if c, ok := r.byType[strings.ToUpper(recordType)]; ok {
		return c
	}
	return r.fallback
}

// Collectors returns every distinct collector the registry holds,
// deduplicated, in registration order with the fallback collector,
// shared by every unlisted type, always last. The event assembler calls
// End on each of these with the same running record count used as both
// pcount and commit priority for every Add call that event — the
// registry itself does not assign per-type priorities.
func (r *Registry) Collectors() []Collector {
	seen := make(map[Collector]bool)
	var out []Collector
	for _, c := range r.ordered {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if !seen[r.fallback] {
		out = append(out, r.fallback)
	}
	return out
}

// Empty resets every distinct collector the registry holds, for reuse on
// the next event.
func (r *Registry) Empty() {
	for _, c := range r.Collectors() {
		c.Empty()
	}
}

// IsEmpty reports whether every distinct collector the registry holds is
// empty.
func (r *Registry) IsEmpty() bool {
	for _, c := range r.Collectors() {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Add routes rec to the collector Resolve names for its type. Registry
// itself plays the role of the single top-level dispatching collector an
// event's records are fed through one at a time.
func (r *Registry) Add(pcount *int, level int64, prio int64, rec auparse.Record) error {
	return r.Resolve(rec.Type).Add(pcount, level, prio, rec)
}

// End calls End on every distinct collector the registry holds, in the
// same order Collectors returns them, passing each the same
// level/prio — mirroring the original dispatcher's plain pass-through of
// one shared (level, count) pair to every sub-collector.
func (r *Registry) End(pcount *int, level int64, prio int64) error {
	for _, c := range r.Collectors() {
		if err := c.End(pcount, level, prio); err != nil {
			return err
		}
	}
	return nil
}
