// Package gbtree implements the priority-tagged buffer tree: the central
// data structure representing an in-progress event as a hierarchy of text
// fragments and borrowed sub-trees, supporting deterministic byte-budget
// trimming (see Trim in trim.go).
package gbtree

import (
	"github.com/scribery/aushape-go/internal/garr"
	"github.com/scribery/aushape-go/internal/gbuf"
)

// Tree is an (exponentially) growing buffer tree. It owns its own text
// buffer and node array; KindChild nodes borrow other Trees without
// owning them — ownership of every Tree in an event lives with the
// converter buffer (internal/convbuf), never with another Tree.
type Tree struct {
	text  *gbuf.Buffer
	nodes *garr.Array[Node]

	// prios maps a priority value to the index of one node in its ring.
	// Absence means no non-void node currently holds that priority.
	prios map[int64]int

	tail int

	lenCache    int64
	lenValid    bool
	atomicCache bool
}

// New returns an empty Tree. textMin/nodeMin/prioMin are initial-capacity
// hints, kept for parity with the source's aushape_gbtree_init signature;
// Go's map-backed priority index needs no prio capacity hint.
func New(textMin, nodeMin, prioMin int) *Tree {
	_ = prioMin
	return &Tree{
		text:  gbuf.New(textMin),
		nodes: garr.New[Node](nodeMin),
		prios: make(map[int64]int),
	}
}

// Text returns the tree's own text buffer, for callers to append pending
// text into before calling AppendText/PutText to snapshot it as a node.
func (t *Tree) Text() *gbuf.Buffer {
	return t.text
}

// NodeCount returns the number of slots in the node array, including
// voids.
func (t *Tree) NodeCount() int {
	return t.nodes.Len()
}

// Empty clears the tree for reuse on the next event: all arrays are
// cleared, the pending-span tail is reset, and cached length/atomic
// flags are invalidated.
func (t *Tree) Empty() {
	t.text.Reset()
	t.nodes.Reset()
	t.prios = make(map[int64]int)
	t.tail = 0
	t.lenValid = false
	t.atomicCache = false
}

func (t *Tree) invalidate() {
	t.lenValid = false
}

func (t *Tree) ensureSlot(index int) {
	for t.nodes.Len() <= index {
		t.nodes.Append(Node{Kind: KindVoid})
	}
}

// link inserts node index into the priority ring for prio.
func (t *Tree) link(index int, prio int64) {
	head, ok := t.prios[prio]
	if !ok {
		n := t.nodes.Get(index)
		n.PrevIndex = index
		n.NextIndex = index
		t.nodes.Set(index, n)
		t.prios[prio] = index
		return
	}
	headN := t.nodes.Get(head)
	tailIdx := headN.PrevIndex
	tailN := t.nodes.Get(tailIdx)

	n := t.nodes.Get(index)
	n.PrevIndex = tailIdx
	n.NextIndex = head
	t.nodes.Set(index, n)

	tailN.NextIndex = index
	t.nodes.Set(tailIdx, tailN)

	headN.PrevIndex = index
	t.nodes.Set(head, headN)
}

// unlink removes node index from its priority ring, marking the priority
// empty if that was the ring's last member.
func (t *Tree) unlink(index int, prio int64) {
	n := t.nodes.Get(index)
	if n.PrevIndex == index {
		delete(t.prios, prio)
		return
	}
	prevN := t.nodes.Get(n.PrevIndex)
	nextN := t.nodes.Get(n.NextIndex)
	prevN.NextIndex = n.NextIndex
	nextN.PrevIndex = n.PrevIndex
	t.nodes.Set(n.PrevIndex, prevN)
	t.nodes.Set(n.NextIndex, nextN)

	if t.prios[prio] == index {
		t.prios[prio] = n.NextIndex
	}
}

// NodeVoid unlinks node index from its ring (if any) and marks it Void.
func (t *Tree) NodeVoid(index int) {
	n := t.nodes.Get(index)
	if n.Kind == KindVoid {
		return
	}
	t.unlink(index, n.Prio)
	n.Kind = KindVoid
	n.Child = nil
	n.Pos, n.Len = 0, 0
	t.nodes.Set(index, n)
	t.invalidate()
}

func (t *Tree) voidExistingOccupant(index int) {
	existing := t.nodes.Get(index)
	if existing.Kind != KindVoid {
		t.unlink(index, existing.Prio)
	}
}

// PutText snapshots the pending span (text appended to Text() since the
// last AppendText/PutText call) as a Text node at the given slot,
// extending with Void nodes if index is beyond the current end. Any
// existing occupant at index is first voided out of its ring.
func (t *Tree) PutText(index int, prio int64) int {
	t.ensureSlot(index)
	t.voidExistingOccupant(index)

	pos := t.tail
	length := t.text.Len() - t.tail
	t.tail = t.text.Len()

	n := Node{Kind: KindText, Prio: prio, Pos: pos, Len: length}
	t.nodes.Set(index, n)
	t.link(index, prio)
	t.invalidate()
	return index
}

// AppendText is PutText at the next unused slot.
func (t *Tree) AppendText(prio int64) int {
	return t.PutText(t.nodes.Len(), prio)
}

// PutTree places a borrowed child Tree at the given slot.
func (t *Tree) PutTree(index int, prio int64, child *Tree) int {
	t.ensureSlot(index)
	t.voidExistingOccupant(index)

	n := Node{Kind: KindChild, Prio: prio, Child: child}
	t.nodes.Set(index, n)
	t.link(index, prio)
	t.invalidate()
	return index
}

// AppendTree is PutTree at the next unused slot.
func (t *Tree) AppendTree(prio int64, child *Tree) int {
	return t.PutTree(t.nodes.Len(), prio, child)
}

// NodeExists reports whether index names a slot that currently holds a
// non-void node.
func (t *Tree) NodeExists(index int) bool {
	if index < 0 || index >= t.nodes.Len() {
		return false
	}
	return t.nodes.Get(index).Kind != KindVoid
}

// Render appends the rendered text of every non-void node, in node-index
// order, to out.
func (t *Tree) Render(out *gbuf.Buffer) {
	t.nodes.Each(func(_ int, n Node) {
		switch n.Kind {
		case KindText:
			out.AppendBytes(t.text.Slice(n.Pos, n.Pos+n.Len))
		case KindChild:
			n.Child.Render(out)
		}
	})
}

// GetLen returns the sum of rendered content length across all non-void
// nodes. If cached is true and a prior GetLen(false)/Trim computed a
// still-valid cache, the cached value is returned without recomputation.
func (t *Tree) GetLen(cached bool) int64 {
	if cached && t.lenValid {
		return t.lenCache
	}
	var sum int64
	t.nodes.Each(func(_ int, n Node) {
		if n.Kind != KindVoid {
			sum += nodeLen(n)
		}
	})
	t.lenCache = sum
	t.lenValid = true
	return sum
}

// IsAtomic reports the atomic flag cached by the most recent Trim call.
// Before any Trim it is false.
func (t *Tree) IsAtomic() bool {
	return t.atomicCache
}

// structurallyAtomic computes, fresh, whether the tree can no longer be
// trimmed: every non-void node has priority 0, and is either Text or an
// atomic Child.
func (t *Tree) structurallyAtomic() bool {
	atomic := true
	t.nodes.Each(func(_ int, n Node) {
		if !atomic || n.Kind == KindVoid {
			return
		}
		if n.Prio != 0 {
			atomic = false
			return
		}
		if n.Kind == KindChild && !n.Child.structurallyAtomic() {
			atomic = false
		}
	})
	return atomic
}

// Solid reports whether the tree has no Void nodes.
func (t *Tree) Solid() bool {
	solid := true
	t.nodes.Each(func(_ int, n Node) {
		if n.Kind == KindVoid {
			solid = false
		}
	})
	return solid
}

// IsEmpty reports whether every node is Void or every non-void node is
// itself empty (a zero-length Text node, or a Child whose IsEmpty is
// true).
func (t *Tree) IsEmpty() bool {
	empty := true
	t.nodes.Each(func(_ int, n Node) {
		if !empty {
			return
		}
		switch n.Kind {
		case KindVoid:
		case KindText:
			if n.Len != 0 {
				empty = false
			}
		case KindChild:
			if !n.Child.IsEmpty() {
				empty = false
			}
		}
	})
	return empty
}
