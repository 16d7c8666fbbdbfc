package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vian96/jitaot/src/dom"
	"github.com/vian96/jitaot/src/ir"
)

// newDiamond builds scenario S2 (spec.md §8): A -> B -> {C, F}, C -> D,
// F -> {E, G}, E -> D, G -> D. Blocks 0..6 are A..G.
func newDiamond() *ir.Graph {
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

func TestComputeImmediateDominators_Diamond(t *testing.T) {
	g := newDiamond()
	a, b, c, d, e, f, gg := g.Block(0), g.Block(1), g.Block(2), g.Block(3), g.Block(4), g.Block(5), g.Block(6)

	idom := dom.ComputeImmediateDominators(g)

	assert.Same(t, a, idom[a.ID()], "P4: the entry's immediate dominator is itself")
	assert.Same(t, a, idom[b.ID()])
	assert.Same(t, b, idom[c.ID()])
	assert.Same(t, b, idom[d.ID()])
	assert.Same(t, f, idom[e.ID()])
	assert.Same(t, b, idom[f.ID()])
	assert.Same(t, f, idom[gg.ID()])
}

func TestComputeImmediateDominators_Idempotent(t *testing.T) {
	g := newDiamond()

	first := dom.ComputeImmediateDominators(g)
	second := dom.ComputeImmediateDominators(g)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Same(t, first[i], second[i], "P3: dominator computation is idempotent")
	}
}

func TestDominatorTree_Equal(t *testing.T) {
	g1 := newDiamond()
	g2 := newDiamond()

	t1 := dom.Of(g1)
	t2 := dom.Of(g2)

	assert.True(t, t1.Equal(t2))
}

func TestDominatorTree_Equal_DetectsDifference(t *testing.T) {
	diamond := dom.Of(newDiamond())

	// A three-block straight line has a different shape.
	g := ir.NewGraph(3, nil)
	g.Block(0).AddSuccessorTrue(g.Block(1))
	g.Block(1).AddSuccessorTrue(g.Block(2))
	line := dom.Of(g)

	assert.False(t, diamond.Equal(line))
}

func TestComputeImmediateDominators_UnreachableBlockHasNilIdom(t *testing.T) {
	g := ir.NewGraph(2, nil)
	// Block 1 has no predecessor and is unreachable from the entry.
	idom := dom.ComputeImmediateDominators(g)

	assert.Same(t, g.Block(0), idom[0])
	assert.Nil(t, idom[1])
}

func TestComputeImmediateDominators_EmptyGraph(t *testing.T) {
	g := ir.NewGraph(0, nil)
	idom := dom.ComputeImmediateDominators(g)
	assert.Empty(t, idom)
}
