package ir

// Instruction is an SSA value node: a typed operation with ordered operand
// slots (Inputs), an unordered list of consumers (Users), and intrusive
// prev/next links into its owning BasicBlock's instruction chain.
//
// Invariants (spec.md §3):
//
//	I1. For every Input of form InputInst referencing J, J.Users contains
//	    exactly one User entry pointing back to this Instruction (per
//	    occurrence — see AddInput/AddInstruction and opt's rewrite rules for
//	    the duplicate-entry rule when the same def feeds two slots).
//	I2. Phi inputs appear only on PHI instructions; the phi's predecessor
//	    block is a predecessor of the phi's owning block.
//	I3. A CONST instruction has exactly one Input, an immediate literal.
//	I4. first_phi, first_not_phi, last agree with the block's chain: all
//	    PHIs precede all non-PHIs.
type Instruction struct {
	id int

	Opcode Opcode
	Type   Type
	Flags  Flags

	Block *BasicBlock

	Inputs []Input
	Users  []User

	prev *Instruction
	next *Instruction
}

// ID returns the identifier assigned to this Instruction when it was
// created. Stable for the instruction's lifetime.
func (i *Instruction) ID() int {
	return i.id
}

// Prev returns the previous instruction in the owning block's chain, or nil
// if i is the first instruction.
func (i *Instruction) Prev() *Instruction {
	return i.prev
}

// Next returns the next instruction in the owning block's chain, or nil if
// i is the last instruction.
func (i *Instruction) Next() *Instruction {
	return i.next
}

// AddInput appends a phi operand to i, an existing PHI instruction, and
// registers the def-use back-edge if the operand references another
// instruction. It is a structural error for inp.Phi.Pred not to be a
// predecessor of i.Block, or for i not to be a PHI.
func (i *Instruction) AddInput(inp Input) error {
	if i.Opcode != OpPhi {
		return newPhiError(i)
	}
	if inp.Kind == InputPhi {
		if !i.Block.hasPred(inp.Phi.Pred) {
			return newNonPredError(i, inp.Phi.Pred)
		}
	}
	i.Inputs = append(i.Inputs, inp)
	if v := inputInstruction(inp); v != nil {
		v.Users = append(v.Users, User{Inst: i})
	}
	return nil
}

// inputInstruction returns the *Instruction referenced by inp, whether it is
// a plain instruction reference or a phi operand, or nil if inp is an
// immediate literal.
func inputInstruction(inp Input) *Instruction {
	switch inp.Kind {
	case InputInst:
		return inp.Inst
	case InputPhi:
		return inp.Phi.Value
	default:
		return nil
	}
}

// DropFromUsersOf removes exactly one User entry pointing to consumer from
// every input of consumer that references another instruction. Used by the
// optimizer's rewrite primitives (spec.md §4.6.3): a consumer that names the
// same def in two operand slots registered two User entries, and removing it
// as a def-use participant must remove both.
func DropFromUsersOf(consumer *Instruction) {
	for _, inp := range consumer.Inputs {
		def := inputInstruction(inp)
		if def == nil {
			continue
		}
		removed := false
		filtered := def.Users[:0]
		for _, u := range def.Users {
			if !removed && u.Inst == consumer {
				removed = true
				continue
			}
			filtered = append(filtered, u)
		}
		def.Users = filtered
	}
}
