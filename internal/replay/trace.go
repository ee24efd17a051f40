// Package replay serves recorded traces to the stepper: it loads the JSON
// trace description and replays the recorded p-code steps of a thread to
// build the emulator for a schedule.
package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"pcodestep/internal/disasm"
	"pcodestep/internal/pcode"
	"pcodestep/internal/types"
)

// Trace is a loaded recording. It implements stepper.Trace.
type Trace struct {
	name    string
	snap    int64
	lang    *pcode.Language
	catalog *types.Catalog
	arch    disasm.Arch
	threads map[string]*threadRecord
	order   []string
}

type threadRecord struct {
	path         string
	state        []write
	instructions []instruction
}

type instruction struct {
	inst    disasm.Inst
	code    []pcode.Op
	exec    []step
	userops map[int]string
}

type step struct {
	op     int
	writes []write
	branch bool
}

type write struct {
	v    pcode.Varnode
	data []byte
}

// Open loads the trace file at path.
func Open(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load decodes and validates a trace description.
func Load(r io.Reader) (*Trace, error) {
	var file File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrace, err)
	}
	return FromFile(&file)
}

// FromFile builds a trace from a decoded description.
func FromFile(file *File) (*Trace, error) {
	if len(file.Threads) == 0 {
		return nil, fmt.Errorf("%w: no threads", ErrInvalidTrace)
	}
	lang := pcode.NewLanguage(file.Language.ID, file.Language.BigEndian)
	for _, r := range file.Language.Registers {
		lang.AddRegister(r.Name, r.Offset, r.Size)
	}
	for _, u := range file.Language.Userops {
		lang.Userops[u.ID] = u.Name
	}

	t := &Trace{
		name:    file.Name,
		snap:    file.Snap,
		lang:    lang,
		catalog: types.NewCatalog(),
		arch:    disasm.ArchForLanguage(file.Language.ID),
		threads: make(map[string]*threadRecord, len(file.Threads)),
	}
	for _, ts := range file.Threads {
		if ts.Path == "" {
			return nil, fmt.Errorf("%w: thread without a path", ErrInvalidTrace)
		}
		if _, dup := t.threads[ts.Path]; dup {
			return nil, fmt.Errorf("%w: duplicate thread %s", ErrInvalidTrace, ts.Path)
		}
		rec, err := t.buildThread(ts)
		if err != nil {
			return nil, fmt.Errorf("%w: thread %s: %w", ErrInvalidTrace, ts.Path, err)
		}
		t.threads[ts.Path] = rec
		t.order = append(t.order, ts.Path)
	}
	return t, nil
}

func (t *Trace) buildThread(ts ThreadSpec) (*threadRecord, error) {
	rec := &threadRecord{path: ts.Path}
	var err error
	if rec.state, err = t.writes(ts.State); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	for i, is := range ts.Instructions {
		insn, err := t.buildInstruction(is)
		if err != nil {
			return nil, fmt.Errorf("instruction %d at 0x%x: %w", i, is.Address, err)
		}
		rec.instructions = append(rec.instructions, insn)
	}
	return rec, nil
}

func (t *Trace) buildInstruction(is InstructionSpec) (instruction, error) {
	inst, err := disasm.Decode(t.arch, is.Address, is.Bytes, is.Text)
	if err != nil {
		return instruction{}, err
	}
	inst.Symbol = is.Symbol

	insn := instruction{inst: inst, userops: make(map[int]string, len(is.Userops))}
	for _, u := range is.Userops {
		insn.userops[u.ID] = u.Name
	}
	for i, spec := range is.Ops {
		op, err := t.op(spec)
		if err != nil {
			return instruction{}, fmt.Errorf("op %d: %w", i, err)
		}
		op.Seq = pcode.SeqNum{Target: is.Address, Time: i}
		insn.code = append(insn.code, op)
	}

	if len(is.Exec) == 0 {
		for i := range insn.code {
			insn.exec = append(insn.exec, step{op: i})
		}
		return insn, nil
	}
	for i, ss := range is.Exec {
		if ss.Op < 0 || ss.Op >= len(insn.code) {
			return instruction{}, fmt.Errorf("exec %d: op %d out of range", i, ss.Op)
		}
		if ss.Branch && i != len(is.Exec)-1 {
			return instruction{}, fmt.Errorf("exec %d: branch is not the last step", i)
		}
		ws, err := t.writes(ss.Writes)
		if err != nil {
			return instruction{}, fmt.Errorf("exec %d: %w", i, err)
		}
		insn.exec = append(insn.exec, step{op: ss.Op, writes: ws, branch: ss.Branch})
	}
	return insn, nil
}

// op converts spec. An unknown mnemonic becomes UNIMPLEMENTED, keeping the
// recorded name. LABEL is template-only and is treated the same.
func (t *Trace) op(spec OpSpec) (pcode.Op, error) {
	op := pcode.Op{Opcode: pcode.UNIMPLEMENTED}
	if opcode, err := pcode.ParseOpcode(spec.Opcode); err == nil && opcode != pcode.LABEL {
		op.Opcode = opcode
	} else if spec.Opcode != "" {
		op.Mnemonic = spec.Opcode
	}
	if spec.Output != nil {
		v, err := t.varnode(*spec.Output)
		if err != nil {
			return pcode.Op{}, fmt.Errorf("output: %w", err)
		}
		op.Output = &v
	}
	for i, in := range spec.Inputs {
		v, err := t.varnode(in)
		if err != nil {
			return pcode.Op{}, fmt.Errorf("input %d: %w", i, err)
		}
		op.Inputs = append(op.Inputs, v)
	}
	return op, nil
}

func (t *Trace) varnode(vs VarnodeSpec) (pcode.Varnode, error) {
	space, err := t.lang.SpaceByName(vs.Space)
	if err != nil {
		return pcode.Varnode{}, err
	}
	if vs.Size <= 0 {
		return pcode.Varnode{}, fmt.Errorf("%s: size %d", vs.Space, vs.Size)
	}
	return pcode.Varnode{Space: space, Offset: vs.Offset, Size: vs.Size}, nil
}

func (t *Trace) writes(specs []WriteSpec) ([]write, error) {
	var out []write
	for _, ws := range specs {
		v, err := t.varnode(ws.Varnode)
		if err != nil {
			return nil, err
		}
		if len(ws.Bytes) != v.Size {
			return nil, fmt.Errorf("%w: %s got %d bytes", pcode.ErrSizeMismatch, v, len(ws.Bytes))
		}
		out = append(out, write{v: v, data: slices.Clone([]byte(ws.Bytes))})
	}
	return out, nil
}

func (t *Trace) Name() string              { return t.name }
func (t *Trace) Language() *pcode.Language { return t.lang }
func (t *Trace) Types() *types.Catalog     { return t.catalog }

// Snap is the snapshot the recording starts at.
func (t *Trace) Snap() int64 { return t.snap }

// Threads returns the thread paths in file order.
func (t *Trace) Threads() []string { return slices.Clone(t.order) }

// InstructionCount returns how many instructions thread executed.
func (t *Trace) InstructionCount(thread string) (int, error) {
	rec, ok := t.threads[thread]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoSuchThread, thread)
	}
	return len(rec.instructions), nil
}
