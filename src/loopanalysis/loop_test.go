package loopanalysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vian96/jitaot/src/dom"
	"github.com/vian96/jitaot/src/ir"
	"github.com/vian96/jitaot/src/loopanalysis"
)

// newFactorialSkeleton builds scenario S1 (spec.md §8): three blocks
// entry/loop/ret with a single back edge loop -> loop.
func newFactorialSkeleton() (g *ir.Graph, entry, loop, ret *ir.BasicBlock) {
	g = ir.NewGraph(3, []ir.Type{ir.Int64})
	entry, loop, ret = g.Block(0), g.Block(1), g.Block(2)

	n, _ := entry.AddInstruction(ir.OpArg, ir.Int64, []ir.Input{ir.ImmInput(0)})
	one, _ := entry.AddInstruction(ir.OpConst, ir.Int64, []ir.Input{ir.ImmInput(1)})
	entry.AddSuccessorTrue(loop)

	iphi, _ := loop.AddInstruction(ir.OpPhi, ir.Int64, nil)
	accphi, _ := loop.AddInstruction(ir.OpPhi, ir.Int64, nil)
	dec, _ := loop.AddInstruction(ir.OpSub, ir.Int64, []ir.Input{ir.InstInput(iphi), ir.ImmInput(1)})
	mul, _ := loop.AddInstruction(ir.OpMul, ir.Int64, []ir.Input{ir.InstInput(accphi), ir.InstInput(iphi)})
	loop.AddInstruction(ir.OpEq, ir.Bool, []ir.Input{ir.InstInput(dec), ir.ImmInput(1)})
	loop.AddSuccessorTrue(ret)
	loop.AddSuccessorFalse(loop)

	_ = iphi.AddInput(ir.PhiOperand(n, entry))
	_ = iphi.AddInput(ir.PhiOperand(dec, loop))
	_ = accphi.AddInput(ir.PhiOperand(one, entry))
	_ = accphi.AddInput(ir.PhiOperand(mul, loop))

	ret.AddInstruction(ir.OpRet, ir.Void, []ir.Input{ir.InstInput(mul)})
	return g, entry, loop, ret
}

// newNestedLoops builds scenario S3 (spec.md §8): 11 blocks A..K with back
// edges H->B, F->E, D->C.
func newNestedLoops() (g *ir.Graph, blocks map[string]*ir.BasicBlock) {
	g = ir.NewGraph(11, nil)
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	blocks = make(map[string]*ir.BasicBlock, len(names))
	for i, n := range names {
		blocks[n] = g.Block(i)
	}
	link := func(from string, trueTo, falseTo string) {
		blocks[from].AddSuccessorTrue(blocks[trueTo])
		if falseTo != "" {
			blocks[from].AddSuccessorFalse(blocks[falseTo])
		}
	}
	link("A", "B", "")
	link("B", "C", "J")
	link("C", "D", "")
	link("D", "E", "C")
	link("E", "F", "")
	link("F", "G", "E")
	link("G", "I", "H")
	link("H", "B", "")
	link("I", "K", "")
	link("J", "C", "")
	return g, blocks
}

func TestLoopSet_FactorialSkeleton(t *testing.T) {
	g, entry, loop, ret := newFactorialSkeleton()

	ls := loopanalysis.Of(g)

	require.Len(t, ls.Loops, 2) // one natural loop + root

	var natural *loopanalysis.Loop
	for _, l := range ls.Loops {
		if l.Header == loop {
			natural = l
		}
	}
	require.NotNil(t, natural)
	assert.Len(t, natural.Latches, 1)
	assert.Same(t, loop, natural.Latches[0])

	// spec.md §8 S1: "root loop contains {entry, ret}".
	assertBlockSet(t, ls.Root.Blocks, entry, ret)

	// spec.md §8 S1: "dominator tree is entry -> loop -> ret".
	tree := dom.Of(g)
	loopNode := tree.Nodes[loop.ID()]
	retNode := tree.Nodes[ret.ID()]
	require.Same(t, tree.Root, tree.Nodes[entry.ID()])
	assert.Same(t, tree.Nodes[entry.ID()], loopNode.Parent)
	assert.Same(t, loopNode, retNode.Parent)
}

func TestLoopSet_NestedLoops(t *testing.T) {
	g, b := newNestedLoops()

	ls := loopanalysis.Of(g)

	require.Len(t, ls.Loops, 4) // B, C, E natural loops + root

	byHeader := map[*ir.BasicBlock]*loopanalysis.Loop{}
	for _, l := range ls.Loops {
		if l.Header != nil {
			byHeader[l.Header] = l
		}
	}

	lb, lc, le := byHeader[b["B"]], byHeader[b["C"]], byHeader[b["E"]]
	require.NotNil(t, lb)
	require.NotNil(t, lc)
	require.NotNil(t, le)

	assert.Same(t, lb, lc.Parent)
	assert.Same(t, lb, le.Parent)
	assert.Same(t, ls.Root, lb.Parent)

	assertBlockSet(t, lb.Blocks, b["B"], b["G"], b["H"], b["J"])
	assertBlockSet(t, lc.Blocks, b["C"], b["D"])
	assertBlockSet(t, le.Blocks, b["E"], b["F"])
	assertBlockSet(t, ls.Root.Blocks, b["A"], b["I"], b["K"])

	assert.ElementsMatch(t, []*ir.BasicBlock{b["H"]}, lb.Latches)
	assert.ElementsMatch(t, []*ir.BasicBlock{b["D"]}, lc.Latches)
	assert.ElementsMatch(t, []*ir.BasicBlock{b["F"]}, le.Latches)
}

func assertBlockSet(t *testing.T, set map[int]*ir.BasicBlock, want ...*ir.BasicBlock) {
	t.Helper()
	require.Len(t, set, len(want))
	for _, b := range want {
		assert.Contains(t, set, b.ID())
	}
}

func TestLoopSet_Coverage_And_Partition(t *testing.T) {
	g, _ := newNestedLoops()
	ls := loopanalysis.Of(g)

	seen := map[int]int{}
	for _, l := range ls.Loops {
		for id := range l.Blocks {
			seen[id]++
		}
	}
	for _, b := range g.Blocks() {
		assert.Equal(t, 1, seen[b.ID()], "P5/P6: every reachable block belongs to exactly one loop")
	}
}

func TestLoopSet_Equal(t *testing.T) {
	g1, _ := newNestedLoops()
	g2, _ := newNestedLoops()

	assert.True(t, loopanalysis.Of(g1).Equal(loopanalysis.Of(g2)))
}

func TestLoopSet_SingleBlock_OnlyRootLoop(t *testing.T) {
	g := ir.NewGraph(1, nil)
	ls := loopanalysis.Of(g)

	require.Len(t, ls.Loops, 1)
	assert.Same(t, ls.Root, ls.Loops[0])
	assert.Contains(t, ls.Root.Blocks, g.Block(0).ID())
}
