package replay

import (
	"fmt"

	"pcodestep/internal/disasm"
	"pcodestep/internal/pcode"
	"pcodestep/internal/stepper"
)

// Emulator is a trace replayed to one schedule. Only the schedule's stepped
// thread is present.
type Emulator struct {
	time    stepper.Schedule
	threads map[string]*Thread
}

// Thread implements stepper.Thread for a replayed thread.
type Thread struct {
	inst    disasm.Inst
	decoded bool
	frame   *pcode.Frame
	state   *pcode.ByteState
	retired int
}

func (e *Emulator) Thread(path string) (stepper.Thread, bool) {
	t, ok := e.threads[path]
	if !ok {
		return nil, false
	}
	return t, true
}

// Schedule is the schedule the emulator was built for.
func (e *Emulator) Schedule() stepper.Schedule { return e.time }

func (t *Thread) Instruction() (fmt.Stringer, bool) {
	if !t.decoded {
		return nil, false
	}
	return t.inst, true
}

func (t *Thread) Frame() (*pcode.Frame, bool) {
	return t.frame, t.frame != nil
}

func (t *Thread) State() pcode.ExecutionState { return t.state }

// Retired is the number of instructions the thread has completed.
func (t *Thread) Retired() int { return t.retired }

// Replay builds the emulator for time. Whole instructions before Ticks run
// to completion. Of the p-code steps after them, the first decodes the
// instruction, each further one executes a recorded step, and one more after
// the last retires the instruction; stepping continues into the next
// instruction.
func (t *Trace) Replay(time stepper.Schedule) (*Emulator, error) {
	emu := &Emulator{time: time, threads: map[string]*Thread{}}
	if time.Thread == "" {
		return emu, nil
	}
	rec, ok := t.threads[time.Thread]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchThread, time.Thread)
	}
	if time.Ticks > uint64(len(rec.instructions)) {
		return nil, fmt.Errorf("%w: %s executed %d instructions, schedule needs %d",
			stepper.ErrStepUnavailable, time.Thread, len(rec.instructions), time.Ticks)
	}

	th := &Thread{state: pcode.NewByteState()}
	if err := apply(th.state, rec.state); err != nil {
		return nil, err
	}
	for _, insn := range rec.instructions[:time.Ticks] {
		for _, s := range insn.exec {
			if err := apply(th.state, s.writes); err != nil {
				return nil, err
			}
		}
	}
	th.retired = int(time.Ticks)

	remaining := time.PTicks
	for remaining > 0 {
		if th.retired >= len(rec.instructions) {
			return nil, fmt.Errorf("%w: %s ran past its last instruction",
				stepper.ErrStepUnavailable, time.Thread)
		}
		insn := rec.instructions[th.retired]
		th.inst, th.decoded = insn.inst, true
		remaining--

		done := int(min(remaining, uint64(len(insn.exec))))
		for _, s := range insn.exec[:done] {
			if err := apply(th.state, s.writes); err != nil {
				return nil, err
			}
		}
		remaining -= uint64(done)
		if remaining == 0 {
			th.frame = insn.frame(done)
			break
		}
		remaining--
		th.retired++
		th.inst, th.decoded = disasm.Inst{}, false
	}
	emu.threads[time.Thread] = th
	return emu, nil
}

// frame is the instruction after done of its recorded steps.
func (insn instruction) frame(done int) *pcode.Frame {
	index, branched := len(insn.code), -1
	switch {
	case done < len(insn.exec):
		index = insn.exec[done].op
	case done > 0 && insn.exec[done-1].branch:
		branched = insn.exec[done-1].op
	}
	return pcode.NewFrame(insn.code, index, branched, insn.userops)
}

func apply(state *pcode.ByteState, writes []write) error {
	for _, w := range writes {
		if err := state.Write(w.v, w.data); err != nil {
			return err
		}
	}
	return nil
}
