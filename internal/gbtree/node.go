package gbtree

// Kind tags the three node variants a Tree can hold.
type Kind int

const (
	// KindVoid renders to nothing and belongs to no priority ring.
	KindVoid Kind = iota
	// KindText owns a [Pos, Pos+Len) slice of its tree's own text buffer.
	KindText
	// KindChild borrows another Tree, owned elsewhere (the converter
	// buffer), rendered and measured recursively.
	KindChild
)

// Node is one slot in a Tree's node array. Priority-ring links
// (PrevIndex/NextIndex) are stored on the node itself rather than via a
// separate linked-list allocation, following the source's gbnode layout.
type Node struct {
	Kind Kind
	Prio int64

	// Pos, Len locate a KindText node's bytes within the owner's text
	// buffer.
	Pos, Len int

	// Child is the borrowed sub-tree for a KindChild node.
	Child *Tree

	// PrevIndex/NextIndex link this node into the doubly-linked ring of
	// all non-void nodes sharing Prio. A solitary ring member points to
	// itself.
	PrevIndex, NextIndex int
}

func nodeLen(n Node) int64 {
	switch n.Kind {
	case KindText:
		return int64(n.Len)
	case KindChild:
		return n.Child.GetLen(false)
	default:
		return 0
	}
}
