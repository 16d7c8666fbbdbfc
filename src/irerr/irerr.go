// Package irerr defines the structural-error taxonomy raised by ir, and by
// opt through ir's constructors (spec.md §7). A structural error aborts the current
// pass and leaves the graph untouched from that point forward; there is no
// recoverable path inside a pass once one is raised.
package irerr

import "github.com/pkg/errors"

// Sentinel base errors, comparable with errors.Is even after wrapping.
var (
	// ErrWrongArity is raised when an opcode that requires a fixed number
	// of inputs (e.g. two, for SUB/AND/SHR) has a different number.
	ErrWrongArity = errors.New("ir: wrong number of inputs for opcode")

	// ErrPhiNonPredecessor is raised when a phi Input names a block that is
	// not a predecessor of the phi's owning BasicBlock.
	ErrPhiNonPredecessor = errors.New("ir: phi input predecessor is not a predecessor of the owning block")

	// ErrPhiAfterNonPhi is raised when a PHI instruction is appended to a
	// block after a non-PHI instruction has already been appended to it.
	ErrPhiAfterNonPhi = errors.New("ir: phi instruction appended after a non-phi instruction")

	// ErrNotAPhi is raised when AddInput is called on an instruction whose
	// opcode is not PHI.
	ErrNotAPhi = errors.New("ir: AddInput called on a non-phi instruction")
)

// StructuralError wraps one of the sentinel errors above with the concrete
// context (instruction id, opcode, block id, ...) of the violation.
type StructuralError struct {
	cause error
	msg   string
}

// New builds a StructuralError wrapping cause with additional context msg.
func New(cause error, msg string) *StructuralError {
	return &StructuralError{cause: cause, msg: msg}
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.msg == "" {
		return e.cause.Error()
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap allows errors.Is/errors.As to see through to the sentinel cause.
func (e *StructuralError) Unwrap() error {
	return e.cause
}

// Wrap decorates err with additional context, preserving the error chain for
// errors.Is/errors.As, via github.com/pkg/errors.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}
