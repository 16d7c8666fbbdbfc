package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vian96/jitaot/src/ir"
)

// newDiamond builds scenario S2: a 7-block diamond A -> B -> {C, F}, C -> D,
// F -> {E, G}, E -> D, G -> D (spec.md §8, S2). Returns blocks indexed
// A..G (0..6).
func newDiamond(t *testing.T) *ir.Graph {
	t.Helper()
	g := ir.NewGraph(7, nil)
	a, b, c, d, e, f, gg := g.Block(0), g.Block(1), g.Block(2), g.Block(3), g.Block(4), g.Block(5), g.Block(6)
	a.AddSuccessorTrue(b)
	b.AddSuccessorTrue(c)
	b.AddSuccessorFalse(f)
	c.AddSuccessorTrue(d)
	f.AddSuccessorTrue(e)
	f.AddSuccessorFalse(gg)
	e.AddSuccessorTrue(d)
	gg.AddSuccessorTrue(d)
	return g
}

func TestBasicBlock_AddInstruction_PhiThenNonPhi(t *testing.T) {
	g := ir.NewGraph(1, nil)
	b := g.Block(0)

	phi, err := b.AddInstruction(ir.OpPhi, ir.Int64, nil)
	require.NoError(t, err)
	require.NotNil(t, phi)

	add, err := b.AddInstruction(ir.OpAdd, ir.Int64, []ir.Input{ir.ImmInput(1), ir.ImmInput(2)})
	require.NoError(t, err)

	assert.Equal(t, phi, b.FirstPhi())
	assert.Equal(t, add, b.FirstNotPhi())
	assert.Equal(t, add, b.Last())
}

func TestBasicBlock_AddInstruction_PhiAfterNonPhiIsStructuralError(t *testing.T) {
	g := ir.NewGraph(1, nil)
	b := g.Block(0)

	_, err := b.AddInstruction(ir.OpAdd, ir.Int64, []ir.Input{ir.ImmInput(1), ir.ImmInput(2)})
	require.NoError(t, err)

	_, err = b.AddInstruction(ir.OpPhi, ir.Int64, nil)
	require.Error(t, err)
}

func TestBasicBlock_AddInstruction_PhiNonPredecessorIsStructuralError(t *testing.T) {
	g := ir.NewGraph(2, nil)
	b0, b1 := g.Block(0), g.Block(1)

	v, err := b0.AddInstruction(ir.OpConst, ir.Int64, []ir.Input{ir.ImmInput(7)})
	require.NoError(t, err)

	// b0 is not a predecessor of b1: the phi operand naming b0 is illegal.
	_, err = b1.AddInstruction(ir.OpPhi, ir.Int64, []ir.Input{ir.PhiOperand(v, b0)})
	require.Error(t, err)
}

func TestGraph_Preds_Consistency(t *testing.T) {
	g := newDiamond(t)
	c, e, gg := g.Block(2), g.Block(4), g.Block(6)
	d := g.Block(3)

	assert.ElementsMatch(t, []*ir.BasicBlock{c, e, gg}, d.Preds(), "P2: every successor lists its predecessor")
}

func TestInstruction_UseDefSymmetry(t *testing.T) {
	g := ir.NewGraph(1, nil)
	b := g.Block(0)

	x, err := b.AddInstruction(ir.OpConst, ir.Int64, []ir.Input{ir.ImmInput(3)})
	require.NoError(t, err)
	add, err := b.AddInstruction(ir.OpAdd, ir.Int64, []ir.Input{ir.InstInput(x), ir.InstInput(x)})
	require.NoError(t, err)

	// x is referenced from two operand slots on add: two User entries (P1).
	require.Len(t, x.Users, 2)
	for _, u := range x.Users {
		assert.Equal(t, add, u.Inst)
	}
}
