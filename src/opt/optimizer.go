// Package opt implements constant folding and peephole simplification over
// an ir.Graph's def-use graph (spec.md §4.6-4.7), grounded on
// original_source/compiler/ir/optimizer.hpp.
package opt

import (
	"github.com/vian96/jitaot/src/diag"
	"github.com/vian96/jitaot/src/internal/stack"
	"github.com/vian96/jitaot/src/ir"
)

// AsConstant returns the 64-bit signed value of inp when inp is an immediate
// literal, or a reference to a CONST instruction whose single input is an
// immediate literal. Otherwise it reports ok == false (spec.md §4.6.1).
func AsConstant(inp ir.Input) (v int64, ok bool) {
	switch inp.Kind {
	case ir.InputImm:
		return inp.Imm, true
	case ir.InputInst:
		c := inp.Inst
		if c.Opcode != ir.OpConst || len(c.Inputs) != 1 {
			return 0, false
		}
		return AsConstant(c.Inputs[0])
	default:
		return 0, false
	}
}

// inputsEqual implements operand identity (spec.md §4.6.3): both immediate
// literals with equal values, or both referencing the same instruction.
// Phi-input equality is undefined and always reports false.
func inputsEqual(a, b ir.Input) bool {
	if a.Kind == ir.InputImm && b.Kind == ir.InputImm {
		return a.Imm == b.Imm
	}
	if a.Kind == ir.InputInst && b.Kind == ir.InputInst {
		return a.Inst == b.Inst
	}
	return false
}

// reversePostorder returns every block of g ordered so that, for a
// reducible graph, each block's predecessors (other than loop latches)
// precede it. Unreachable blocks are appended afterward in their original
// index order, so every block in g is visited exactly once.
func reversePostorder(g *ir.Graph) []*ir.BasicBlock {
	n := g.NumBlocks()
	visited := make([]bool, n)
	var postorderList []*ir.BasicBlock

	entry := g.Entry()
	if entry != nil {
		type frame struct {
			block *ir.BasicBlock
			next  int
		}
		var st stack.Stack[*frame]
		visited[entry.ID()] = true
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
				postorderList = append(postorderList, top.block)
				continue
			}
			top.next++
			if succ != nil && !visited[succ.ID()] {
				visited[succ.ID()] = true
				st.Push(&frame{block: succ})
			}
		}
	}

	order := make([]*ir.BasicBlock, 0, n)
	for i := len(postorderList) - 1; i >= 0; i-- {
		order = append(order, postorderList[i])
	}
	for _, b := range g.Blocks() {
		if !visited[b.ID()] {
			order = append(order, b)
		}
	}
	return order
}

// replaceWithConst implements the "replace with CONST v" rewrite primitive
// (spec.md §4.6.3): drop i from its inputs' user lists, then turn i itself
// into a CONST holding v. Instructions that refer to i keep referring to it
// by identity — they now read a constant.
func replaceWithConst(i *ir.Instruction, v int64) {
	ir.DropFromUsersOf(i)
	i.Inputs = []ir.Input{ir.ImmInput(v)}
	i.Opcode = ir.OpConst
}

// replaceWithInput implements the "replace with Input target" rewrite
// primitive (spec.md §4.6.3): every user of i is redirected to target, i is
// dropped from its own inputs' user lists, and i itself decays into a dead
// CONST 0 stub whose only input is the immediate 0 and which has no users. Users reach i either through a plain
// operand slot or through a phi operand's Value; both are redirected. A phi
// operand can only name an instruction (PhiInput has no immediate case), so
// a phi slot referencing i is left unchanged when target is itself an
// immediate rather than an instruction.
func replaceWithInput(i *ir.Instruction, target ir.Input) {
	for _, u := range i.Users {
		for idx, slot := range u.Inst.Inputs {
			switch {
			case slot.Kind == ir.InputInst && slot.Inst == i:
				u.Inst.Inputs[idx] = target
			case slot.Kind == ir.InputPhi && slot.Phi.Value == i && target.Kind == ir.InputInst:
				u.Inst.Inputs[idx].Phi.Value = target.Inst
			default:
				continue
			}
			if target.Kind == ir.InputInst {
				target.Inst.Users = append(target.Inst.Users, ir.User{Inst: u.Inst})
			}
		}
	}
	ir.DropFromUsersOf(i)
	i.Inputs = []ir.Input{ir.ImmInput(0)}
	i.Users = nil
	i.Opcode = ir.OpConst
}

// foldable reports whether op is one of the three constant-foldable,
// strictly-binary opcodes (spec.md §4.6.2).
func foldable(op ir.Opcode) bool {
	return op == ir.OpSub || op == ir.OpAnd || op == ir.OpShr
}

// ConstantFolding walks g's blocks in reverse postorder and its
// instructions front-to-back, rewriting SUB/AND/SHR instructions whose
// operands both resolve to constants into CONST instructions (spec.md
// §4.6.2). It returns an error, without mutating further, the first time it
// finds a SUB/AND/SHR instruction without exactly two inputs.
func ConstantFolding(g *ir.Graph, log diag.Logger) error {
	folded := 0
	for _, b := range reversePostorder(g) {
		for i := b.First(); i != nil; {
			next := i.Next() // sampled before mutation (spec.md §4.6)
			if foldable(i.Opcode) {
				if len(i.Inputs) != 2 {
					return ir.WrongArityError(i, 2)
				}
				v1, ok1 := AsConstant(i.Inputs[0])
				v2, ok2 := AsConstant(i.Inputs[1])
				if ok1 && ok2 {
					replaceWithConst(i, foldValue(i.Opcode, v1, v2))
					folded++
				}
			}
			i = next
		}
	}
	log.Debugf("constant folding: %d instructions folded", folded)
	return nil
}

// foldValue computes the 64-bit signed result of applying op to v1, v2. Only
// called for op in {SUB, AND, SHR} (spec.md §4.6.2). SHR is an arithmetic
// right shift of a signed 64-bit value; shift counts of 64 or more fold to
// 0, matching the threshold PeepholePass's own SHR rule uses.
func foldValue(op ir.Opcode, v1, v2 int64) int64 {
	switch op {
	case ir.OpSub:
		return v1 - v2
	case ir.OpAnd:
		return v1 & v2
	case ir.OpShr:
		if v2 >= 64 {
			return 0
		}
		return v1 >> uint64(v2)
	default:
		return 0
	}
}

// PeepholePass walks g's blocks in reverse postorder and its instructions
// front-to-back, applying the algebraic-identity table of spec.md §4.6.3 to
// every two-input instruction. Instructions with an arity other than two are
// skipped, not rejected (only constant folding enforces strict arity).
func PeepholePass(g *ir.Graph, log diag.Logger) error {
	rewrites := 0
	for _, b := range reversePostorder(g) {
		for i := b.First(); i != nil; {
			next := i.Next()
			if len(i.Inputs) == 2 && peephole(i) {
				rewrites++
			}
			i = next
		}
	}
	log.Debugf("peephole: %d instructions rewritten", rewrites)
	return nil
}

// peephole applies the first matching rule of spec.md §4.6.3's table to i,
// and reports whether a rewrite happened.
func peephole(i *ir.Instruction) bool {
	x, y := i.Inputs[0], i.Inputs[1]
	cx, okx := AsConstant(x)
	cy, oky := AsConstant(y)

	switch i.Opcode {
	case ir.OpSub:
		if oky && cy == 0 {
			replaceWithInput(i, x)
			return true
		}
		if inputsEqual(x, y) {
			replaceWithConst(i, 0)
			return true
		}
	case ir.OpAnd:
		if inputsEqual(x, y) {
			replaceWithInput(i, x)
			return true
		}
		if (okx && cx == 0) || (oky && cy == 0) {
			replaceWithConst(i, 0)
			return true
		}
		if okx && cx == -1 {
			replaceWithInput(i, y)
			return true
		}
		if oky && cy == -1 {
			replaceWithInput(i, x)
			return true
		}
	case ir.OpShr:
		if oky && cy == 0 {
			replaceWithInput(i, x)
			return true
		}
		if oky && cy >= 64 {
			replaceWithConst(i, 0)
			return true
		}
	}
	return false
}

// Optimize runs the combined pipeline: constant folding, peephole, constant
// folding again (spec.md §4.7). All three passes always run; it returns the
// first error any of them reports.
func Optimize(g *ir.Graph, log diag.Logger) error {
	if err := ConstantFolding(g, log); err != nil {
		return err
	}
	if err := PeepholePass(g, log); err != nil {
		return err
	}
	if err := ConstantFolding(g, log); err != nil {
		return err
	}
	return nil
}
