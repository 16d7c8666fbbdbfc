// Package loopanalysis detects natural loops over an ir.Graph's
// control-flow edges and assembles them into a loop-nesting forest rooted at
// a synthetic root loop (spec.md §4.4), grounded on
// original_source/compiler/ir/loop_analyser.hpp.
package loopanalysis

import (
	"github.com/vian96/jitaot/src/internal/stack"
	"github.com/vian96/jitaot/src/ir"
)

// color is the three-state DFS marker used for back-edge detection: white
// (unvisited), gray (on the current DFS path), black (finished).
type color uint8

const (
	white color = iota
	gray
	black
)

// backEdge is a discovered u -> h edge where h is an ancestor of u on the
// DFS stack at the time u is visited (spec.md §4.4 step 1).
type backEdge struct {
	latch, header *ir.BasicBlock
}

// findBackEdges runs a colored DFS from entry, following Next1 then Next2,
// and returns every back edge found. Any DFS back edge is accepted
// unconditionally, without an additional dominance check (spec.md §4.4 open
// question, resolved in DESIGN.md).
func findBackEdges(entry *ir.BasicBlock, nblocks int) []backEdge {
	colors := make([]color, nblocks)
	var edges []backEdge

	type frame struct {
		block *ir.BasicBlock
		next  int
	}
	var st stack.Stack[*frame]
	colors[entry.ID()] = gray
	st.Push(&frame{block: entry})

	for !st.Empty() {
		top, _ := st.Peek()
		var succ *ir.BasicBlock
		switch top.next {
		case 0:
			succ = top.block.Next1()
		case 1:
			succ = top.block.Next2()
		default:
			st.Pop()
			colors[top.block.ID()] = black
			continue
		}
		top.next++
		if succ == nil {
			continue
		}
		switch colors[succ.ID()] {
		case white:
			colors[succ.ID()] = gray
			st.Push(&frame{block: succ})
		case gray:
			edges = append(edges, backEdge{latch: top.block, header: succ})
		case black:
			// forward/cross edge, not a back edge.
		}
	}
	return edges
}

// Loop is one node of the loop-nesting forest.
type Loop struct {
	// Header is nil for the synthetic root loop, otherwise the loop's
	// header block (spec.md §3).
	Header *ir.BasicBlock

	// Blocks is this loop's body, excluding blocks owned by any nested
	// inner loop (post body-trimming, spec.md §4.4 step 4).
	Blocks map[int]*ir.BasicBlock

	// Latches are the blocks with a back edge into Header.
	Latches []*ir.BasicBlock

	Parent *Loop
	Inner  []*Loop
}

func newLoop(header *ir.BasicBlock) *Loop {
	return &Loop{Header: header, Blocks: make(map[int]*ir.BasicBlock)}
}

func (l *Loop) addLatch(b *ir.BasicBlock) {
	for _, e := range l.Latches {
		if e == b {
			return
		}
	}
	l.Latches = append(l.Latches, b)
}

// LoopSet is the flat collection of loops produced by Of: every natural loop
// plus the synthetic root, related by Parent/Inner (spec.md §4.4).
type LoopSet struct {
	Loops []*Loop
	Root  *Loop
}

// Of computes the natural-loop forest of g (spec.md §4.4).
func Of(g *ir.Graph) *LoopSet {
	ls := &LoopSet{}
	entry := g.Entry()
	if entry == nil {
		ls.Root = newLoop(nil)
		ls.Loops = []*Loop{ls.Root}
		return ls
	}

	edges := findBackEdges(entry, g.NumBlocks())

	// Step 2: natural-loop body collection, one Loop per distinct header.
	byHeader := make(map[int]*Loop)
	var order []*Loop
	for _, be := range edges {
		l, ok := byHeader[be.header.ID()]
		if !ok {
			l = newLoop(be.header)
			byHeader[be.header.ID()] = l
			order = append(order, l)
		}
		l.addLatch(be.latch)
		l.Blocks[be.header.ID()] = be.header
		l.Blocks[be.latch.ID()] = be.latch

		// Predecessor walk from the latch, seeded with {latch, header} as
		// already-visited so the walk never crosses the header. A self-loop
		// (latch == header) has no body beyond the header, so it is not walked.
		visited := map[int]bool{be.latch.ID(): true, be.header.ID(): true}
		var st stack.Stack[*ir.BasicBlock]
		if be.latch != be.header {
			st.Push(be.latch)
		}
		for !st.Empty() {
			b, _ := st.Pop()
			for _, p := range b.Preds() {
				if visited[p.ID()] {
					continue
				}
				visited[p.ID()] = true
				l.Blocks[p.ID()] = p
				st.Push(p)
			}
		}
	}

	// Step 3: nesting by smallest-enclosing-block-set.
	for _, li := range order {
		var best *Loop
		for _, lj := range order {
			if li == lj {
				continue
			}
			if _, ok := lj.Blocks[li.Header.ID()]; !ok {
				continue
			}
			if best == nil || len(lj.Blocks) < len(best.Blocks) {
				best = lj
			}
		}
		if best != nil {
			li.Parent = best
			best.Inner = append(best.Inner, li)
		}
	}

	// Step 4: body trimming — remove from every loop's block set the
	// blocks owned by any of its direct inner loops.
	for _, l := range order {
		for _, inner := range l.Inner {
			for id := range inner.Blocks {
				delete(l.Blocks, id)
			}
		}
	}

	// Step 5: root-loop synthesis.
	root := newLoop(nil)
	claimed := make(map[int]bool)
	for _, l := range order {
		for id := range l.Blocks {
			claimed[id] = true
		}
	}
	for _, b := range g.Blocks() {
		if !claimed[b.ID()] {
			root.Blocks[b.ID()] = b
		}
	}
	for _, l := range order {
		if l.Parent == nil {
			l.Parent = root
			root.Inner = append(root.Inner, l)
		}
	}

	ls.Root = root
	ls.Loops = append(order, root)
	return ls
}

func blockSetEqual(a, b map[int]*ir.BasicBlock) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

func latchSetEqual(a, b []*ir.BasicBlock) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]bool, len(b))
	for _, bl := range b {
		seen[bl.ID()] = true
	}
	for _, al := range a {
		if !seen[al.ID()] {
			return false
		}
	}
	return true
}

func headerID(l *Loop) (int, bool) {
	if l.Header == nil {
		return 0, false
	}
	return l.Header.ID(), true
}

// Equal implements the loop-analysis equality relation of spec.md §4.5:
// matching sizes, matching headers for regular loops, matching latch and
// block sets per header, matching parent-header per loop, and for the root
// loops, matching block sets and matching sets of inner-loop headers. Inner
// ordering is not significant.
func (ls *LoopSet) Equal(other *LoopSet) bool {
	if ls == nil || other == nil {
		return ls == other
	}
	if len(ls.Loops) != len(other.Loops) {
		return false
	}

	byHeader := make(map[int]*Loop)
	for _, l := range ls.Loops {
		if id, ok := headerID(l); ok {
			byHeader[id] = l
		}
	}
	otherByHeader := make(map[int]*Loop)
	for _, l := range other.Loops {
		if id, ok := headerID(l); ok {
			otherByHeader[id] = l
		}
	}
	if len(byHeader) != len(otherByHeader) {
		return false
	}

	for id, l := range byHeader {
		ol, ok := otherByHeader[id]
		if !ok {
			return false
		}
		if !blockSetEqual(l.Blocks, ol.Blocks) {
			return false
		}
		if !latchSetEqual(l.Latches, ol.Latches) {
			return false
		}
		lpID, lpOK := headerID(l.Parent)
		olpID, olpOK := headerID(ol.Parent)
		if lpOK != olpOK || (lpOK && lpID != olpID) {
			return false
		}
	}

	if (ls.Root == nil) != (other.Root == nil) {
		return false
	}
	if ls.Root == nil {
		return true
	}
	if !blockSetEqual(ls.Root.Blocks, other.Root.Blocks) {
		return false
	}
	innerHeaders := func(l *Loop) map[int]bool {
		m := make(map[int]bool, len(l.Inner))
		for _, c := range l.Inner {
			if id, ok := headerID(c); ok {
				m[id] = true
			}
		}
		return m
	}
	a, b := innerHeaders(ls.Root), innerHeaders(other.Root)
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}
