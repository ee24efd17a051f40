package replay

import (
	"errors"
	"strings"
	"testing"

	"pcodestep/internal/pcode"
	"pcodestep/internal/stepper"
)

func TestReplay(t *testing.T) {
	trace := openCounter(t)
	x0 := pcode.Reg(0x4000, 8)
	tests := []struct {
		name         string
		time         stepper.Schedule
		wantDecoded  bool
		wantFrame    bool
		wantIndex    int
		wantBranched int
		wantRetired  int
		wantX0       byte
	}{
		{"decode", stepper.Schedule{PTicks: 1, Thread: "main"}, true, true, 0, -1, 0, 1},
		{"one step", stepper.Schedule{PTicks: 2, Thread: "main"}, true, true, 1, -1, 0, 1},
		{"all steps", stepper.Schedule{PTicks: 3, Thread: "main"}, true, true, 2, -1, 0, 2},
		{"retired", stepper.Schedule{PTicks: 4, Thread: "main"}, false, false, 0, 0, 1, 2},
		{"next decoded", stepper.Schedule{PTicks: 5, Thread: "main"}, true, true, 0, -1, 1, 2},
		{"whole ticks", stepper.Schedule{Ticks: 1, PTicks: 1, Thread: "main"}, true, true, 0, -1, 1, 2},
		{"relative branch", stepper.Schedule{Ticks: 1, PTicks: 4, Thread: "main"}, true, true, 4, -1, 1, 2},
		{"return", stepper.Schedule{Ticks: 3, PTicks: 2, Thread: "main"}, true, true, 1, 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu, err := trace.Replay(tt.time)
			if err != nil {
				t.Fatalf("Replay() error = %v", err)
			}
			th, ok := emu.Thread("main")
			if !ok {
				t.Fatal("thread main absent")
			}
			if _, ok := emu.Thread("worker"); ok {
				t.Error("unstepped thread worker present")
			}
			if _, ok := th.Instruction(); ok != tt.wantDecoded {
				t.Errorf("Instruction() ok = %v, want %v", ok, tt.wantDecoded)
			}
			frame, ok := th.Frame()
			if ok != tt.wantFrame {
				t.Fatalf("Frame() ok = %v, want %v", ok, tt.wantFrame)
			}
			if ok {
				if frame.Index() != tt.wantIndex {
					t.Errorf("Index() = %d, want %d", frame.Index(), tt.wantIndex)
				}
				if frame.Branched() != tt.wantBranched {
					t.Errorf("Branched() = %d, want %d", frame.Branched(), tt.wantBranched)
				}
			}
			if got := th.(*Thread).Retired(); got != tt.wantRetired {
				t.Errorf("Retired() = %d, want %d", got, tt.wantRetired)
			}
			data, ok := th.State().Read(x0)
			if !ok || data[0] != tt.wantX0 {
				t.Errorf("x0 = %v, %v, want %d", data, ok, tt.wantX0)
			}
		})
	}
}

func TestReplayErrors(t *testing.T) {
	trace := openCounter(t)
	tests := []struct {
		name string
		time stepper.Schedule
		want error
	}{
		{"unknown thread", stepper.Schedule{PTicks: 1, Thread: "nope"}, ErrNoSuchThread},
		{"too many ticks", stepper.Schedule{Ticks: 5, Thread: "main"}, stepper.ErrStepUnavailable},
		{"past the end", stepper.Schedule{Ticks: 4, PTicks: 1, Thread: "main"}, stepper.ErrStepUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := trace.Replay(tt.time); !errors.Is(err, tt.want) {
				t.Errorf("Replay() error = %v, want %v", err, tt.want)
			}
		})
	}

	emu, err := trace.Replay(stepper.Schedule{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := emu.Thread("main"); ok {
		t.Error("thread present without a stepped thread")
	}
}

func TestReplayInstructionLabel(t *testing.T) {
	trace := openCounter(t)
	emu, err := trace.Replay(stepper.Schedule{Ticks: 1, PTicks: 1, Thread: "main"})
	if err != nil {
		t.Fatal(err)
	}
	th, _ := emu.Thread("main")
	insn, ok := th.Instruction()
	if !ok {
		t.Fatal("no instruction")
	}
	if got := insn.String(); !strings.HasPrefix(got, "0x100004 <step()>  cbz") {
		t.Errorf("Instruction() = %q", got)
	}

	emu, err = trace.Replay(stepper.Schedule{PTicks: 1, Thread: "worker"})
	if err != nil {
		t.Fatal(err)
	}
	th, _ = emu.Thread("worker")
	insn, _ = th.Instruction()
	if got := insn.String(); got != "0x101000  nop" {
		t.Errorf("Instruction() = %q", got)
	}
	frame, _ := th.Frame()
	if name, ok := frame.UseropName(7); !ok || name != "emu_hint" {
		t.Errorf("UseropName(7) = %q, %v", name, ok)
	}
}
