package collector

import (
	"strings"

	"github.com/scribery/aushape-go/internal/aushapeerr"
	"github.com/scribery/aushape-go/internal/format"
	"github.com/scribery/aushape-go/internal/gbtree"
	"github.com/scribery/aushape-go/pkg/auparse"
)

// Single commits one record as its own "<type raw=\"...\">fields</type>"
// fragment per Add call, tracking which record types it has already seen.
// With unique set, a second record of a type already seen is rejected
// rather than rendered again — see NewUnique.
type Single struct {
	format format.Format
	tree   *gbtree.Tree
	unique bool
	seen   map[string]struct{}
}

// NewSingle returns a Single collector that renders every record it is
// given, tolerating repeated types.
func NewSingle(f format.Format, tree *gbtree.Tree) *Single {
	return &Single{format: f, tree: tree}
}

// NewUnique returns a Single collector that rejects a second record of a
// type it has already rendered.
func NewUnique(f format.Format, tree *gbtree.Tree) *Single {
	return &Single{format: f, tree: tree, unique: true}
}

func (s *Single) IsEmpty() bool {
	return len(s.seen) == 0
}

func (s *Single) Empty() {
	s.seen = nil
}

func (s *Single) Add(pcount *int, level int64, prio int64, rec auparse.Record) error {
	name := strings.ToUpper(rec.Type)
	if _, ok := s.seen[name]; ok {
		if s.unique {
			return aushapeerr.Newf(aushapeerr.RepeatedRecord,
				"record type %q repeated in one event", name)
		}
	} else {
		if s.seen == nil {
			s.seen = make(map[string]struct{})
		}
		s.seen[name] = struct{}{}
	}

	format.Record(s.tree.Text(), s.format, level, *pcount == 0, name, rec.Raw, rec.Fields)
	s.tree.AppendText(prio)
	*pcount++
	return nil
}

func (s *Single) End(pcount *int, level int64, prio int64) error {
	return nil
}
