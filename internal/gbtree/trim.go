package gbtree

import "sort"

// Trim makes the tree's rendered length fit within budget bytes if that
// is possible without voiding priority-0 nodes or splitting atomic
// leaves; otherwise it leaves the tree at its minimum attainable size and
// marks it atomic. This is the five-step algorithm from spec.md §4.3.
func (t *Tree) Trim(budget int64) {
	prios := t.sortedPrios()

	var sum int64
	pStarIdx := -1
	for i, p := range prios {
		total := t.prioTotal(p)
		if sum+total > budget {
			pStarIdx = i
			break
		}
		sum += total
	}

	if pStarIdx == -1 {
		t.atomicCache = t.structurallyAtomic()
		t.lenCache = sum
		t.lenValid = true
		return
	}

	pStar := prios[pStarIdx]
	r := budget - sum

	t.proportionallyTrim(pStar, r)

	pStarTotal := t.prioTotal(pStar)

	switch {
	case pStarTotal > r && pStar == 0:
		// Priority 0 cannot be voided; keep it oversized and mark the
		// tree atomic. Everything strictly above p* still goes.
		t.voidPriosFrom(prios[pStarIdx+1:])
		t.atomicCache = true
	case pStarTotal <= r:
		// p* now fits; keep it, drop everything above it.
		t.voidPriosFrom(prios[pStarIdx+1:])
		t.atomicCache = t.structurallyAtomic()
	default:
		// p* still doesn't fit but isn't priority 0: drop it entirely,
		// along with everything above it.
		t.voidPriosFrom(prios[pStarIdx:])
		t.atomicCache = t.structurallyAtomic()
	}

	t.lenCache = t.GetLen(false)
	t.lenValid = true
}

func (t *Tree) sortedPrios() []int64 {
	out := make([]int64, 0, len(t.prios))
	for p := range t.prios {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ringIndices returns the node indices in the priority ring headed at
// t.prios[prio], or nil if that priority is empty.
func (t *Tree) ringIndices(prio int64) []int {
	head, ok := t.prios[prio]
	if !ok {
		return nil
	}
	var out []int
	i := head
	for {
		out = append(out, i)
		i = t.nodes.Get(i).NextIndex
		if i == head {
			break
		}
	}
	return out
}

func (t *Tree) prioTotal(prio int64) int64 {
	var sum int64
	for _, idx := range t.ringIndices(prio) {
		sum += nodeLen(t.nodes.Get(idx))
	}
	return sum
}

// proportionallyTrim implements step 3 of the algorithm: repeatedly
// classify p*'s ring members as atomic/non-atomic and shrink non-atomic
// Child nodes proportionally until the ring stabilizes, the atomic
// content alone already exceeds the allowance, or there is nothing left
// to shrink.
func (t *Tree) proportionallyTrim(pStar int64, r int64) {
	for {
		indices := t.ringIndices(pStar)
		if len(indices) == 0 {
			return
		}

		var atomTotal, nonAtomTotal int64
		var nonAtomic []int
		for _, idx := range indices {
			n := t.nodes.Get(idx)
			if n.Kind == KindChild && !n.Child.structurallyAtomic() {
				nonAtomic = append(nonAtomic, idx)
				nonAtomTotal += nodeLen(n)
			} else {
				atomTotal += nodeLen(n)
			}
		}

		if atomTotal >= r || nonAtomTotal == 0 {
			return
		}

		rPrime := r - atomTotal
		before := atomTotal + nonAtomTotal
		for _, idx := range nonAtomic {
			n := t.nodes.Get(idx)
			childLen := nodeLen(n)
			childBudget := (childLen * rPrime) / nonAtomTotal
			n.Child.Trim(childBudget)
		}
		after := t.prioTotal(pStar)
		if after >= before {
			// No further progress possible; stop to avoid looping.
			return
		}
	}
}

func (t *Tree) voidPriosFrom(prios []int64) {
	for _, p := range prios {
		for _, idx := range t.ringIndices(p) {
			t.NodeVoid(idx)
		}
	}
}
