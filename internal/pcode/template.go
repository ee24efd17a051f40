package pcode

import "slices"

// Template is a static rendering directive for one row of an instruction's
// p-code. Line labels are LABEL templates carrying Label; every other
// template stands for the next runtime op in order.
type Template struct {
	Opcode Opcode
	Output *Varnode
	Inputs []Varnode
	// Label is the label number of a LABEL template.
	Label int
	// BranchLabel is the label a relative branch's first input refers to,
	// or -1.
	BranchLabel int
}

// IsLineLabel reports whether t renders a line label rather than an op.
func (t Template) IsLineLabel() bool {
	return t.Opcode == LABEL
}

// Templates derives the template list for code. A relative branch (BRANCH or
// CBRANCH whose destination is a constant) gets a line label in front of its
// target op; labels are numbered by target position. A target one past the
// last op gets a trailing label.
func Templates(code []Op) []Template {
	var targets []int
	for i, op := range code {
		if t, ok := relativeTarget(code, i, op); ok && !slices.Contains(targets, t) {
			targets = append(targets, t)
		}
	}
	slices.Sort(targets)

	labelAt := func(idx int) int {
		n, ok := slices.BinarySearch(targets, idx)
		if !ok {
			return -1
		}
		return n
	}

	out := make([]Template, 0, len(code)+len(targets))
	for i := 0; i <= len(code); i++ {
		if n := labelAt(i); n >= 0 {
			out = append(out, Template{Opcode: LABEL, Label: n, BranchLabel: -1})
		}
		if i == len(code) {
			break
		}
		op := code[i]
		t := Template{Opcode: op.Opcode, Output: op.Output, Inputs: op.Inputs, BranchLabel: -1}
		if target, ok := relativeTarget(code, i, op); ok {
			t.BranchLabel = labelAt(target)
		}
		out = append(out, t)
	}
	return out
}

func relativeTarget(code []Op, i int, op Op) (int, bool) {
	if op.Opcode != BRANCH && op.Opcode != CBRANCH {
		return 0, false
	}
	if len(op.Inputs) == 0 || !op.Inputs[0].IsConstant() {
		return 0, false
	}
	t := i + int(op.Inputs[0].SignedOffset())
	if t < 0 || t > len(code) {
		return 0, false
	}
	return t, true
}
