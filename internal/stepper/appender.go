package stepper

import (
	"fmt"
	"strconv"

	"pcodestep/internal/pcode"
)

// Appender receives the tokens of a p-code listing one category at a time.
// Rows are opened with StartRow (bound to an op, or nil for a line label) and
// closed with EndRow; Finish returns every row built so far.
type Appender interface {
	AppendAddressWordOffcut(wordOffset, offcut uint64)
	AppendCharacter(c rune)
	AppendIndent()
	AppendLabel(label string)
	AppendLineLabelRef(label int)
	AppendMnemonic(opcode pcode.Opcode)
	AppendRawVarnode(space pcode.Space, offset uint64, size int)
	AppendRegister(reg pcode.Register)
	AppendScalar(value int64)
	AppendSpace(space pcode.Space)
	AppendUnique(offset uint64)
	AppendUserop(id int)

	StartRow(op *pcode.Op, current bool)
	EndRow()
	Finish() []Row
}

// rowAppender builds categorized rows for one frame.
type rowAppender struct {
	lang  *pcode.Language
	frame *pcode.Frame

	rows    []Row
	spans   Spans
	op      *pcode.Op
	current bool
}

func newRowAppender(lang *pcode.Language, frame *pcode.Frame) *rowAppender {
	return &rowAppender{lang: lang, frame: frame}
}

func (a *rowAppender) add(cat Category, text string) {
	a.spans = append(a.spans, Span{Category: cat, Text: text})
}

func (a *rowAppender) StartRow(op *pcode.Op, current bool) {
	a.op = op
	a.current = current
	a.spans = nil
}

func (a *rowAppender) EndRow() {
	seq := len(a.rows)
	if a.op == nil {
		a.rows = append(a.rows, LabelRow{Seq: seq, Spans: a.spans})
	} else {
		a.rows = append(a.rows, OpRow{Seq: seq, Op: a.op, Current: a.current, Spans: a.spans})
	}
	a.op, a.current, a.spans = nil, false, nil
}

func (a *rowAppender) Finish() []Row {
	return a.rows
}

func (a *rowAppender) AppendAddressWordOffcut(wordOffset, offcut uint64) {
	if offcut == 0 {
		a.add(CategoryAddress, fmt.Sprintf("0x%x", wordOffset))
		return
	}
	a.add(CategoryAddress, fmt.Sprintf("0x%x.%d", wordOffset, offcut))
}

func (a *rowAppender) AppendCharacter(c rune) {
	if c == '=' {
		a.add(CategorySeparator, " = ")
		return
	}
	a.add(CategorySeparator, string(c))
}

func (a *rowAppender) AppendIndent() {
	a.add(CategoryIndent, "  ")
}

func (a *rowAppender) AppendLabel(label string) {
	a.add(CategoryLocal, label)
}

func (a *rowAppender) AppendLineLabelRef(label int) {
	a.add(CategoryLineLabel, fmt.Sprintf("<%d>", label))
}

func (a *rowAppender) AppendMnemonic(opcode pcode.Opcode) {
	if opcode == pcode.UNIMPLEMENTED || !opcode.Known() {
		a.add(CategoryUnimplemented, opcode.String())
		return
	}
	a.add(CategoryMnemonic, opcode.String())
}

func (a *rowAppender) AppendRawVarnode(space pcode.Space, offset uint64, size int) {
	a.add(CategoryRaw, fmt.Sprintf("(%s, 0x%x, %d)", space.Name, offset, size))
}

func (a *rowAppender) AppendRegister(reg pcode.Register) {
	a.add(CategoryRegister, reg.Name)
}

func (a *rowAppender) AppendScalar(value int64) {
	if value < 0 {
		a.add(CategoryScalar, fmt.Sprintf("-0x%x", uint64(-value)))
		return
	}
	a.add(CategoryScalar, fmt.Sprintf("0x%x", value))
}

func (a *rowAppender) AppendSpace(space pcode.Space) {
	a.add(CategorySpace, space.Name)
}

func (a *rowAppender) AppendUnique(offset uint64) {
	a.add(CategoryLocal, fmt.Sprintf("$U%x", offset))
}

func (a *rowAppender) AppendUserop(id int) {
	a.add(CategoryUserop, a.useropName(id))
}

// useropName prefers the language's table, then the frame's, then the bare
// id.
func (a *rowAppender) useropName(id int) string {
	if a.lang != nil {
		if name, ok := a.lang.UseropName(id); ok {
			return name
		}
	}
	if a.frame != nil {
		if name, ok := a.frame.UseropName(id); ok {
			return name
		}
	}
	return strconv.Itoa(id)
}
