package ir

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DumpDebug writes a human-readable dump of i to w. The format is unstable
// and intended for interactive debugging only (spec.md §6).
func (i *Instruction) DumpDebug(w io.Writer) {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%%%d: %s %s", i.id, i.Type, i.Opcode))
	if i.Flags != 0 {
		sb.WriteString(fmt.Sprintf(" flags=%#x", i.Flags))
	}
	sb.WriteString(" inputs=[")
	for i1, inp := range i.Inputs {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(dumpInput(inp))
	}
	sb.WriteString("] users=[")
	for i1, u := range i.Users {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%%%d", u.Inst.id))
	}
	sb.WriteString("]\n")
	fmt.Fprint(w, sb.String())
}

func dumpInput(inp Input) string {
	switch inp.Kind {
	case InputInst:
		return fmt.Sprintf("%%%d", inp.Inst.id)
	case InputImm:
		return fmt.Sprintf("%d", inp.Imm)
	case InputPhi:
		return fmt.Sprintf("[%%%d, bb%%%d]", inp.Phi.Value.id, inp.Phi.Pred.id)
	default:
		return "?"
	}
}

// DumpDebug writes a human-readable dump of b's instruction chain, next1,
// next2 and preds to w (spec.md §6).
func (b *BasicBlock) DumpDebug(w io.Writer) {
	fmt.Fprintf(w, "bb%%%d:\n", b.id)
	for i := b.First(); i != nil; i = i.next {
		fmt.Fprint(w, "  ")
		i.DumpDebug(w)
	}
	if b.next1 != nil {
		fmt.Fprintf(w, "  next1: bb%%%d\n", b.next1.id)
	}
	if b.next2 != nil {
		fmt.Fprintf(w, "  next2: bb%%%d\n", b.next2.id)
	}
	sb := strings.Builder{}
	for i1, p := range b.preds {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("bb%%%d", p.id))
	}
	fmt.Fprintf(w, "  preds: [%s]\n", sb.String())
}

// DumpDebug writes a human-readable dump of g's argument types and every
// block to w. If w is nil, g dumps to os.Stderr (spec.md §6:
// "Graph.dump_debug()").
func (g *Graph) DumpDebug(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	sb := strings.Builder{}
	for i1, t := range g.Args {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	fmt.Fprintf(w, "graph %%%d args=(%s)\n", g.id, sb.String())
	for _, b := range g.blocks {
		b.DumpDebug(w)
	}
}
