package pcode

// Frame is the p-code of the instruction a thread is executing, together with
// its progress: the step index of the next op and, if the instruction left
// through a branch, the index of the op that branched.
type Frame struct {
	code        []Op
	index       int
	branched    int
	useropNames map[int]string
}

// NewFrame returns a frame over code. branched is -1 unless the instruction
// has completed by branching.
func NewFrame(code []Op, index, branched int, useropNames map[int]string) *Frame {
	return &Frame{
		code:        code,
		index:       index,
		branched:    branched,
		useropNames: useropNames,
	}
}

// Code returns the runtime ops in order.
func (f *Frame) Code() []Op { return f.code }

// Index returns the step index of the next op to execute.
func (f *Frame) Index() int { return f.index }

// Branched returns the index of the op that branched out of the
// instruction, or -1.
func (f *Frame) Branched() int { return f.branched }

// IsBranch reports whether the instruction completed by branching.
func (f *Frame) IsBranch() bool { return f.branched >= 0 }

// IsFallthrough reports whether every op has executed without a branch out.
func (f *Frame) IsFallthrough() bool {
	return !f.IsBranch() && f.index >= len(f.code)
}

// UseropName returns a userop name the frame's library defines. Emulators
// may register userops the language does not know about.
func (f *Frame) UseropName(id int) (string, bool) {
	name, ok := f.useropNames[id]
	return name, ok
}
