package ir

import (
	"fmt"

	"github.com/vian96/jitaot/src/irerr"
)

func newPhiError(i *Instruction) error {
	return irerr.New(irerr.ErrNotAPhi,
		fmt.Sprintf("instruction %%%d: AddInput requires a PHI opcode, got %s", i.id, i.Opcode))
}

func newPhiAfterNonPhiError(b *BasicBlock) error {
	return irerr.New(irerr.ErrPhiAfterNonPhi,
		fmt.Sprintf("block %%%d: cannot append PHI after a non-PHI instruction", b.id))
}

func newNonPredError(i *Instruction, pred *BasicBlock) error {
	return irerr.New(irerr.ErrPhiNonPredecessor,
		fmt.Sprintf("instruction %%%d: block %%%d is not a predecessor of owning block %%%d", i.id, pred.id, i.Block.id))
}

func newWrongArityError(i *Instruction, want int) error {
	return irerr.New(irerr.ErrWrongArity,
		fmt.Sprintf("instruction %%%d (%s): expected %d inputs, got %d", i.id, i.Opcode, want, len(i.Inputs)))
}

// WrongArityError builds the exported structural error for the constant
// folding pass when it discovers an ill-formed instruction (spec.md §4.6.2: "the IR is
// ill-formed and the pass fails"). Exposed so the opt package can raise it
// without importing irerr's constructors directly for every check site.
func WrongArityError(i *Instruction, want int) error {
	return newWrongArityError(i, want)
}
