// Package dom builds dominator trees over ir.Graph control-flow graphs using
// the iterative reverse-postorder finger-intersection algorithm (spec.md
// §4.2), grounded on original_source/compiler/ir/doms.hpp.
package dom

import (
	"github.com/vian96/jitaot/src/internal/stack"
	"github.com/vian96/jitaot/src/ir"
)

// frame is one entry on the explicit DFS stack used by postorder, tracking
// which successor of a block still needs to be visited.
type frame struct {
	block *ir.BasicBlock
	next  int // 0: not yet visited next1, 1: not yet visited next2, 2: done
}

// postorder performs a depth-first traversal from entry, visiting Next1
// before Next2, and returns blocks numbered by postorder position: num[b.ID()]
// is b's postorder number, or -1 if b is unreachable. Also returns the
// reachable blocks in postorder.
func postorder(entry *ir.BasicBlock, nblocks int) (order []*ir.BasicBlock, num []int) {
	num = make([]int, nblocks)
	for i := range num {
		num[i] = -1
	}
	visited := make([]bool, nblocks)
	order = make([]*ir.BasicBlock, 0, nblocks)

	var st stack.Stack[*frame]
	visited[entry.ID()] = true
	st.Push(&frame{block: entry})

	for !st.Empty() {
		top, _ := st.Peek()
		switch top.next {
		case 0:
			top.next = 1
			if n := top.block.Next1(); n != nil && !visited[n.ID()] {
				visited[n.ID()] = true
				st.Push(&frame{block: n})
			}
		case 1:
			top.next = 2
			if n := top.block.Next2(); n != nil && !visited[n.ID()] {
				visited[n.ID()] = true
				st.Push(&frame{block: n})
			}
		default:
			st.Pop()
			num[top.block.ID()] = len(order)
			order = append(order, top.block)
		}
	}
	return order, num
}

// idomState carries the working immediate-dominator assignment during the
// fixpoint (spec.md §4.2 step 3), keyed by block id.
type idomState struct {
	idom []*ir.BasicBlock
	num  []int // postorder number per block id, -1 if unreachable
}

func (s *idomState) intersect(a, b *ir.BasicBlock) *ir.BasicBlock {
	for a != b {
		for s.num[a.ID()] < s.num[b.ID()] {
			a = s.idom[a.ID()]
		}
		for s.num[b.ID()] < s.num[a.ID()] {
			b = s.idom[b.ID()]
		}
	}
	return a
}

// ComputeImmediateDominators computes the immediate dominator of every
// reachable block in g and returns it as a slice indexed by block id.
// Unreachable blocks (including the case of an empty or entry-less graph)
// have a nil entry (spec.md §4.2, §7). Deterministic and idempotent: calling
// it twice on the same, unmutated Graph yields identical results (P3).
func ComputeImmediateDominators(g *ir.Graph) []*ir.BasicBlock {
	n := g.NumBlocks()
	idom := make([]*ir.BasicBlock, n)
	if n == 0 {
		return idom
	}
	entry := g.Entry()
	if entry == nil {
		return idom
	}

	order, num := postorder(entry, n)
	if len(order) == 0 {
		return idom
	}

	// Reverse postorder, excluding the entry, which comes last in order.
	rpo := make([]*ir.BasicBlock, len(order))
	for i, b := range order {
		rpo[len(order)-1-i] = b
	}

	st := &idomState{idom: idom, num: num}
	idom[entry.ID()] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom *ir.BasicBlock
			for _, p := range b.Preds() {
				if num[p.ID()] == -1 {
					continue // unreachable predecessor, ignored (spec.md §7)
				}
				if idom[p.ID()] != nil {
					newIdom = p
					break
				}
			}
			if newIdom == nil {
				continue
			}
			for _, p := range b.Preds() {
				if p == newIdom || num[p.ID()] == -1 || idom[p.ID()] == nil {
					continue
				}
				newIdom = st.intersect(p, newIdom)
			}
			if idom[b.ID()] != newIdom {
				idom[b.ID()] = newIdom
				changed = true
			}
		}
	}

	return idom
}

// Node is one entry of a DominatorTree: a BasicBlock plus its parent and
// children in the tree.
type Node struct {
	Block    *ir.BasicBlock
	Parent   *Node
	Children []*Node
}

// DominatorTree is the dominator tree derived from a Graph's immediate-dominator
// mapping (spec.md §3). One Node per block; the entry's Node is the root and
// has no parent. Unreachable blocks still get a Node, but with a nil parent
// and no children, distinguishable from the root only by identity (callers
// should compare against DominatorTree.Root).
type DominatorTree struct {
	Nodes []*Node // indexed by block id
	Root  *Node
}

// Of computes g's dominator tree from scratch (spec.md §4.2).
func Of(g *ir.Graph) *DominatorTree {
	n := g.NumBlocks()
	t := &DominatorTree{Nodes: make([]*Node, n)}
	for i := 0; i < n; i++ {
		t.Nodes[i] = &Node{Block: g.Block(i)}
	}
	if n == 0 {
		return t
	}

	idom := ComputeImmediateDominators(g)
	entry := g.Entry()

	for i := 0; i < n; i++ {
		b := g.Block(i)
		id := idom[i]
		if id == nil {
			// Unreachable: parentless, not linked into the tree.
			continue
		}
		if b == entry {
			t.Root = t.Nodes[i]
			continue
		}
		parent := t.Nodes[id.ID()]
		t.Nodes[i].Parent = parent
		parent.Children = append(parent.Children, t.Nodes[i])
	}

	return t
}

// Equal reports whether t and other have the same number of nodes and, for
// every index, agree on block identity and on parent block identity (both
// nil, or both referring to the same block). Children are not compared
// independently: if parents agree everywhere, children agree by
// construction (spec.md §4.3).
func (t *DominatorTree) Equal(other *DominatorTree) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range t.Nodes {
		a, b := t.Nodes[i], other.Nodes[i]
		if a.Block.ID() != b.Block.ID() {
			return false
		}
		switch {
		case a.Parent == nil && b.Parent == nil:
			// both unlinked (root, or unreachable): fine.
		case a.Parent != nil && b.Parent != nil:
			if a.Parent.Block.ID() != b.Parent.Block.ID() {
				return false
			}
		default:
			return false
		}
	}
	return true
}
