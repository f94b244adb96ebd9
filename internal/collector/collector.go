// Package collector implements the per-record-type aggregators that turn
// a sequence of parsed records into the rendered fragments committed to
// an event's buffer tree. Each record type is routed to one Collector by
// a Registry (registry.go); the converter buffer owns the tree every
// Collector writes into.
package collector

import (
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Collector accumulates records of one or more related types and commits
// their rendering into a shared gbtree.Tree. pcount, threaded through
// both Add and End, tracks how many sibling fragments have already been
// committed into the same JSON object, so a collector knows whether its
// own fragment needs a leading comma.
type Collector interface {
	// IsEmpty reports whether Add has contributed anything since the last
	// Empty.
	IsEmpty() bool

	// Empty discards everything accumulated so far, for reuse on the next
	// event.
	Empty()

	// Add folds one record into the collector's accumulated state. level
	// is the nesting level of the collector's own committed fragment;
	// prio is the priority the fragment (if any) should be committed at.
	Add(pcount *int, level int64, prio int64, rec auparse.Record) error

	// End finalizes and commits whatever Add accumulated. Collectors that
	// commit eagerly on every Add (Single, Unique) leave End a no-op.
	End(pcount *int, level int64, prio int64) error
}
