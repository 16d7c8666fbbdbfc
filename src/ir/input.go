package ir

// InputKind tags which variant of Input is populated.
type InputKind uint

const (
	// InputInst identifies an Input that references another Instruction.
	InputInst InputKind = iota
	// InputImm identifies an Input holding an immediate integer literal.
	InputImm
	// InputPhi identifies a phi operand: a (value, predecessor) pair.
	InputPhi
)

// PhiInput carries the incoming value from one predecessor edge of a PHI.
type PhiInput struct {
	Value *Instruction // producing Instruction for this edge.
	Pred  *BasicBlock  // the predecessor block this value flows in from.
}

// Input is a tagged variant describing one operand slot of an Instruction.
// Exactly one of Inst, Imm, Phi is meaningful, selected by Kind.
type Input struct {
	Kind InputKind

	Inst *Instruction // valid when Kind == InputInst
	Imm  int64        // valid when Kind == InputImm
	Phi  PhiInput     // valid when Kind == InputPhi
}

// InstInput builds an Input referencing another Instruction's result.
func InstInput(i *Instruction) Input {
	return Input{Kind: InputInst, Inst: i}
}

// ImmInput builds an Input holding an immediate integer literal.
func ImmInput(v int64) Input {
	return Input{Kind: InputImm, Imm: v}
}

// PhiOperand builds a phi Input for the edge coming from pred, carrying val.
func PhiOperand(val *Instruction, pred *BasicBlock) Input {
	return Input{Kind: InputPhi, Phi: PhiInput{Value: val, Pred: pred}}
}

// User records that the Instruction identified by Inst consumes some other
// instruction's result. It is a def-use back-edge entry (spec.md §3).
type User struct {
	Inst *Instruction
}
