// Package stepper turns the p-code frame of the instruction a thread is
// executing into display rows and a table of unique variables, and keeps
// both in step with the debugger's coordinates.
package stepper

import (
	"fmt"

	"pcodestep/internal/pcode"
)

// Row is one line of the p-code listing. The concrete types are OpRow,
// LabelRow, BranchRow, FallthroughRow and PlaceholderRow.
type Row interface {
	// Sequence is the row's position in the listing, contiguous from 0.
	Sequence() int
	// Code is the row's text without categories.
	Code() string
	isRow()
}

// OpRow renders one runtime op. Current marks the op about to execute.
type OpRow struct {
	Seq     int
	Op      *pcode.Op
	Current bool
	Spans   Spans
}

// LabelRow renders a line label that relative branches refer to.
type LabelRow struct {
	Seq   int
	Spans Spans
}

// BranchRow follows the ops of an instruction that left through a branch.
// Branched is the index of the op that branched.
type BranchRow struct {
	Seq      int
	Branched int
}

// FallthroughRow follows the ops of an instruction that ran to its end.
type FallthroughRow struct {
	Seq int
}

// PlaceholderRow stands in for the listing when there is nothing to show.
type PlaceholderRow struct {
	Seq     int
	Message string
}

func (r OpRow) Sequence() int          { return r.Seq }
func (r LabelRow) Sequence() int       { return r.Seq }
func (r BranchRow) Sequence() int      { return r.Seq }
func (r FallthroughRow) Sequence() int { return r.Seq }
func (r PlaceholderRow) Sequence() int { return r.Seq }

func (r OpRow) Code() string          { return r.Spans.String() }
func (r LabelRow) Code() string       { return r.Spans.String() }
func (r BranchRow) Code() string      { return fmt.Sprintf("(branched from %d)", r.Branched) }
func (r FallthroughRow) Code() string { return "(fall-through)" }
func (r PlaceholderRow) Code() string { return r.Message }

func (OpRow) isRow()          {}
func (LabelRow) isRow()       {}
func (BranchRow) isRow()      {}
func (FallthroughRow) isRow() {}
func (PlaceholderRow) isRow() {}

// Placeholder messages.
const (
	MessageNoThread   = "(no thread selected)"
	MessageNotDecoded = "(decode instruction)"
)

// IsCurrent reports whether r is the op row about to execute.
func IsCurrent(r Row) bool {
	op, ok := r.(OpRow)
	return ok && op.Current
}
