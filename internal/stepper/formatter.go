package stepper

import "pcodestep/internal/pcode"

// Formatted is the p-code listing of a frame. Next is the index of the row
// about to execute, or -1.
type Formatted struct {
	Rows []Row
	Next int
}

// Formatter renders a frame's templates through an Appender.
type Formatter struct {
	Lang   *pcode.Language
	Frame  *pcode.Frame
	Indent bool

	index int
	next  int
}

// Format renders frame with templates derived from its own code.
func Format(lang *pcode.Language, frame *pcode.Frame, indent bool) Formatted {
	f := &Formatter{Lang: lang, Frame: frame, Indent: indent}
	return f.FormatTemplates(pcode.Templates(frame.Code()))
}

// FormatTemplates walks templates against the frame's runtime code. Every
// template except a line label consumes the next runtime op. After the
// templates a BranchRow or FallthroughRow is appended if the frame has
// finished that way.
func (f *Formatter) FormatTemplates(templates []pcode.Template) Formatted {
	f.index, f.next = 0, -1
	a := newRowAppender(f.Lang, f.Frame)
	code := f.Frame.Code()

	for _, tpl := range templates {
		if tpl.IsLineLabel() {
			a.StartRow(nil, false)
			a.AppendLineLabelRef(tpl.Label)
			a.EndRow()
			continue
		}
		if f.index >= len(code) {
			// Templates and code disagree; show what lines up.
			break
		}
		op := &code[f.index]
		f.index++
		current := op.Seq.Time == f.Frame.Index()
		if current && f.next < 0 {
			f.next = len(a.rows)
		}
		a.StartRow(op, current)
		f.formatOp(a, tpl)
		a.EndRow()
	}

	rows := a.Finish()
	switch {
	case f.Frame.IsBranch():
		rows = append(rows, BranchRow{Seq: len(rows), Branched: f.Frame.Branched()})
	case f.Frame.IsFallthrough():
		rows = append(rows, FallthroughRow{Seq: len(rows)})
	}
	return Formatted{Rows: rows, Next: f.next}
}

func (f *Formatter) formatOp(a Appender, tpl pcode.Template) {
	if f.Indent {
		a.AppendIndent()
	}
	if tpl.Output != nil {
		f.formatVarnode(a, *tpl.Output)
		a.AppendCharacter('=')
	}

	switch tpl.Opcode {
	case pcode.CALLOTHER:
		f.formatCallOther(a, tpl)
	case pcode.LOAD, pcode.STORE:
		f.formatMemoryAccess(a, tpl)
	default:
		a.AppendMnemonic(tpl.Opcode)
		for i, in := range tpl.Inputs {
			f.separate(a, i)
			if i == 0 && tpl.BranchLabel >= 0 {
				a.AppendLineLabelRef(tpl.BranchLabel)
				continue
			}
			f.formatVarnode(a, in)
		}
	}
}

func (f *Formatter) separate(a Appender, i int) {
	if i > 0 {
		a.AppendCharacter(',')
	}
	a.AppendCharacter(' ')
}

// formatCallOther renders "name(args)"; the first input is the userop id.
func (f *Formatter) formatCallOther(a Appender, tpl pcode.Template) {
	if len(tpl.Inputs) == 0 || !tpl.Inputs[0].IsConstant() {
		a.AppendMnemonic(tpl.Opcode)
		return
	}
	a.AppendUserop(int(tpl.Inputs[0].Offset))
	a.AppendCharacter('(')
	for i, in := range tpl.Inputs[1:] {
		if i > 0 {
			a.AppendCharacter(',')
			a.AppendCharacter(' ')
		}
		f.formatVarnode(a, in)
	}
	a.AppendCharacter(')')
}

// formatMemoryAccess renders "LOAD space(ptr)" and "STORE space(ptr), value";
// the first input names the space.
func (f *Formatter) formatMemoryAccess(a Appender, tpl pcode.Template) {
	a.AppendMnemonic(tpl.Opcode)
	if len(tpl.Inputs) < 2 {
		for i, in := range tpl.Inputs {
			f.separate(a, i)
			f.formatVarnode(a, in)
		}
		return
	}
	a.AppendCharacter(' ')
	space, ok := pcode.Space{}, false
	if f.Lang != nil && tpl.Inputs[0].IsConstant() {
		space, ok = f.Lang.SpaceByID(tpl.Inputs[0].Offset)
	}
	if ok {
		a.AppendSpace(space)
	} else {
		f.formatVarnode(a, tpl.Inputs[0])
	}
	a.AppendCharacter('(')
	f.formatVarnode(a, tpl.Inputs[1])
	a.AppendCharacter(')')
	for _, in := range tpl.Inputs[2:] {
		a.AppendCharacter(',')
		a.AppendCharacter(' ')
		f.formatVarnode(a, in)
	}
}

func (f *Formatter) formatVarnode(a Appender, v pcode.Varnode) {
	switch v.Space.Kind {
	case pcode.SpaceConstant:
		a.AppendScalar(int64(v.Offset))
	case pcode.SpaceUnique:
		a.AppendUnique(v.Offset)
	case pcode.SpaceRegister:
		if f.Lang != nil {
			if reg, ok := f.Lang.Register(v); ok {
				a.AppendRegister(reg)
				return
			}
		}
		a.AppendRawVarnode(v.Space, v.Offset, v.Size)
	case pcode.SpaceRAM:
		word := v.Space.WordSize
		if word == 0 {
			word = 1
		}
		a.AppendCharacter('*')
		a.AppendCharacter('[')
		a.AppendSpace(v.Space)
		a.AppendCharacter(']')
		a.AppendAddressWordOffcut(v.Offset/word, v.Offset%word)
	default:
		a.AppendRawVarnode(v.Space, v.Offset, v.Size)
	}
}
