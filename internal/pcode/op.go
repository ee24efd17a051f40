package pcode

import (
	"fmt"
	"strings"
)

// SeqNum locates an op: the address of the instruction that produced it and
// its step index within that instruction.
type SeqNum struct {
	Target uint64
	Time   int
}

// Op is a single p-code operation.
type Op struct {
	Opcode Opcode
	Output *Varnode
	Inputs []Varnode
	Seq    SeqNum

	// Mnemonic is the recorded name of an op decoded as UNIMPLEMENTED
	// because its opcode is not known, or "".
	Mnemonic string
}

// String renders the op without language knowledge, for logs and test
// failures.
func (op Op) String() string {
	var sb strings.Builder
	if op.Output != nil {
		sb.WriteString(op.Output.String())
		sb.WriteString(" = ")
	}
	sb.WriteString(op.Opcode.String())
	if op.Mnemonic != "" {
		fmt.Fprintf(&sb, "(%s)", op.Mnemonic)
	}
	for i, in := range op.Inputs {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(in.String())
	}
	return fmt.Sprintf("%s @%x:%d", sb.String(), op.Seq.Target, op.Seq.Time)
}
