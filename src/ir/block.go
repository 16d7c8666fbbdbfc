package ir

// BasicBlock is a node in the CFG: an ordered instruction chain partitioned
// into a phi-prefix and a non-phi suffix, up to two successors, and an
// unordered predecessor set (spec.md §3).
type BasicBlock struct {
	id int

	graph *Graph

	firstPhi    *Instruction
	firstNotPhi *Instruction
	last        *Instruction

	next1 *BasicBlock // fall-through / true branch
	next2 *BasicBlock // alternative branch

	preds []*BasicBlock

	// idom and postorder are not written by any pass in this module:
	// dom.ComputeImmediateDominators returns immediate dominators as a slice
	// indexed by block id and keeps postorder numbers internal.
	idom      *BasicBlock
	postorder int
	hasPO     bool
}

// ID returns the identifier of b, equal to its index in the owning Graph's
// block vector (spec.md §3).
func (b *BasicBlock) ID() int {
	return b.id
}

// Graph returns the Graph that owns b.
func (b *BasicBlock) Graph() *Graph {
	return b.graph
}

// Next1 returns the fall-through / true-branch successor, or nil.
func (b *BasicBlock) Next1() *BasicBlock {
	return b.next1
}

// Next2 returns the alternative-branch successor, or nil.
func (b *BasicBlock) Next2() *BasicBlock {
	return b.next2
}

// Preds returns the unordered predecessor set of b.
func (b *BasicBlock) Preds() []*BasicBlock {
	return b.preds
}

// FirstPhi returns the first PHI instruction in b's chain, or nil.
func (b *BasicBlock) FirstPhi() *Instruction {
	return b.firstPhi
}

// FirstNotPhi returns the first non-PHI instruction in b's chain, or nil.
func (b *BasicBlock) FirstNotPhi() *Instruction {
	return b.firstNotPhi
}

// Last returns the last instruction in b's chain, or nil if b is empty.
func (b *BasicBlock) Last() *Instruction {
	return b.last
}

// First returns the first instruction of b's chain regardless of phi status
// (the phi prefix if non-empty, otherwise the non-phi suffix), or nil.
func (b *BasicBlock) First() *Instruction {
	if b.firstPhi != nil {
		return b.firstPhi
	}
	return b.firstNotPhi
}

// Instructions returns b's instructions in chain order.
func (b *BasicBlock) Instructions() []*Instruction {
	res := make([]*Instruction, 0, 8)
	for i := b.First(); i != nil; i = i.next {
		res = append(res, i)
	}
	return res
}

// hasPred reports whether p is a member of b's predecessor set.
func (b *BasicBlock) hasPred(p *BasicBlock) bool {
	for _, e := range b.preds {
		if e == p {
			return true
		}
	}
	return false
}

// AddSuccessorTrue sets b's fall-through/true successor to other and
// registers b in other's predecessor set (spec.md §4.1).
func (b *BasicBlock) AddSuccessorTrue(other *BasicBlock) {
	b.next1 = other
	other.preds = append(other.preds, b)
}

// AddSuccessorFalse sets b's alternative successor to other and registers b
// in other's predecessor set (spec.md §4.1).
func (b *BasicBlock) AddSuccessorFalse(other *BasicBlock) {
	b.next2 = other
	other.preds = append(other.preds, b)
}

// AddInstruction appends a new instruction to b's chain, wiring def-use
// back-edges for every Input that references another instruction. Appending
// a PHI after a non-PHI instruction has already appeared in b is a
// structural error (spec.md §4.1); appending a non-PHI after a PHI is legal
// and simply starts the non-phi suffix.
func (b *BasicBlock) AddInstruction(opcode Opcode, typ Type, inputs []Input, flags ...Flags) (*Instruction, error) {
	if opcode == OpPhi && b.firstNotPhi != nil {
		return nil, newPhiAfterNonPhiError(b)
	}

	var f Flags
	for _, e := range flags {
		f |= e
	}

	inst := &Instruction{
		id:     b.graph.nextID(),
		Opcode: opcode,
		Type:   typ,
		Flags:  f,
		Block:  b,
		Inputs: append([]Input(nil), inputs...),
		prev:   b.last,
	}

	if opcode == OpPhi {
		for _, inp := range inst.Inputs {
			if inp.Kind == InputPhi && !b.hasPred(inp.Phi.Pred) {
				return nil, newNonPredError(inst, inp.Phi.Pred)
			}
		}
	}

	for _, inp := range inst.Inputs {
		if v := inputInstruction(inp); v != nil {
			v.Users = append(v.Users, User{Inst: inst})
		}
	}

	if b.last != nil {
		b.last.next = inst
	}
	if opcode == OpPhi {
		if b.firstPhi == nil {
			b.firstPhi = inst
		}
	} else if b.firstNotPhi == nil {
		b.firstNotPhi = inst
	}
	b.last = inst

	return inst, nil
}
