package ir

import "sync/atomic"

// graphCounter assigns unique identifiers to Graphs. Graphs themselves are
// not shared across goroutines (spec.md §5), but constructing many of them
// from concurrent test packages is common enough that a plain package-level
// counter is worth making atomic.
var graphCounter int64

// Graph is a function body: an owned, indexed vector of BasicBlocks, an
// argument-type list, and a designated entry block, by convention index 0
// (spec.md §3).
type Graph struct {
	id int64

	Args []Type

	blocks []*BasicBlock

	seq int
}

// NewGraph creates a Graph with nblocks pre-allocated, empty BasicBlocks and
// the given argument types. The entry block is always blocks[0].
func NewGraph(nblocks int, args []Type) *Graph {
	g := &Graph{
		id:   atomic.AddInt64(&graphCounter, 1),
		Args: append([]Type(nil), args...),
	}
	g.blocks = make([]*BasicBlock, nblocks)
	for i := range g.blocks {
		g.blocks[i] = &BasicBlock{id: i, graph: g}
	}
	return g
}

// ID returns the identifier assigned to g when it was created.
func (g *Graph) ID() int64 {
	return g.id
}

// Block returns the BasicBlock at index i.
func (g *Graph) Block(i int) *BasicBlock {
	return g.blocks[i]
}

// Blocks returns every BasicBlock owned by g, indexed identically to Block.
func (g *Graph) Blocks() []*BasicBlock {
	return g.blocks
}

// NumBlocks returns the number of blocks owned by g.
func (g *Graph) NumBlocks() int {
	return len(g.blocks)
}

// Entry returns g's entry block, by convention index 0, or nil if g owns no
// blocks.
func (g *Graph) Entry() *BasicBlock {
	if len(g.blocks) == 0 {
		return nil
	}
	return g.blocks[0]
}

// nextID returns a unique, monotonically increasing identifier for any
// Instruction created within g.
func (g *Graph) nextID() int {
	id := g.seq
	g.seq++
	return id
}
