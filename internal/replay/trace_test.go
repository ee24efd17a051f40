package replay

import (
	"errors"
	"strings"
	"testing"

	"pcodestep/internal/pcode"
	"pcodestep/internal/stepper"
)

func openCounter(t *testing.T) *Trace {
	t.Helper()
	trace, err := Open("testdata/counter.json")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return trace
}

func TestOpen(t *testing.T) {
	trace := openCounter(t)
	if trace.Name() != "counter" {
		t.Errorf("Name() = %q", trace.Name())
	}
	if got := trace.Threads(); len(got) != 2 || got[0] != "main" || got[1] != "worker" {
		t.Errorf("Threads() = %v", got)
	}
	if n, err := trace.InstructionCount("main"); err != nil || n != 4 {
		t.Errorf("InstructionCount(main) = %d, %v", n, err)
	}
	if _, err := trace.InstructionCount("nope"); !errors.Is(err, ErrNoSuchThread) {
		t.Errorf("InstructionCount(nope) error = %v", err)
	}
	lang := trace.Language()
	if lang.BigEndian {
		t.Error("language is big endian")
	}
	if reg, ok := lang.Register(pcode.Reg(0x4000, 8)); !ok || reg.Name != "x0" {
		t.Errorf("Register(0x4000) = %v, %v", reg, ok)
	}
	if name, ok := lang.UseropName(0); !ok || name != "CallSupervisor" {
		t.Errorf("UseropName(0) = %q, %v", name, ok)
	}
	if trace.Types() == nil || trace.Types().Len() != 0 {
		t.Error("Types() should be an empty catalog")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"unknown field", `{"name": "x", "bogus": 1, "threads": [{"path": "a"}]}`},
		{"no threads", `{"name": "x", "language": {"id": "x86:LE:64:default"}, "threads": []}`},
		{"thread without path", `{"threads": [{"path": ""}]}`},
		{"duplicate thread", `{"threads": [{"path": "a"}, {"path": "a"}]}`},
		{"bad space", `{"threads": [{"path": "a", "instructions": [{"address": 0, "text": "x", "ops": [{"opcode": "COPY", "inputs": [{"space": "stack", "offset": 0, "size": 4}]}]}]}]}`},
		{"bad size", `{"threads": [{"path": "a", "instructions": [{"address": 0, "text": "x", "ops": [{"opcode": "COPY", "inputs": [{"space": "const", "offset": 0, "size": 0}]}]}]}]}`},
		{"exec out of range", `{"threads": [{"path": "a", "instructions": [{"address": 0, "text": "x", "ops": [{"opcode": "COPY"}], "exec": [{"op": 3}]}]}]}`},
		{"early branch", `{"threads": [{"path": "a", "instructions": [{"address": 0, "text": "x", "ops": [{"opcode": "BRANCH"}, {"opcode": "COPY"}], "exec": [{"op": 0, "branch": true}, {"op": 1}]}]}]}`},
		{"write size", `{"threads": [{"path": "a", "state": [{"varnode": {"space": "register", "offset": 0, "size": 4}, "bytes": "00"}]}]}`},
		{"bad hex", `{"threads": [{"path": "a", "state": [{"varnode": {"space": "register", "offset": 0, "size": 1}, "bytes": "zz"}]}]}`},
		{"short arm64", `{"language": {"id": "AARCH64:LE:64:v8A"}, "threads": [{"path": "a", "instructions": [{"address": 0, "bytes": "00", "ops": []}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.json)); !errors.Is(err, ErrInvalidTrace) {
				t.Errorf("Load() error = %v, want ErrInvalidTrace", err)
			}
		})
	}
}

func TestLoadUnknownOpcode(t *testing.T) {
	tests := []struct {
		mnemonic string
		want     string
	}{
		{"FROB", "UNIMPLEMENTED 0x1"},
		{"LABEL", "UNIMPLEMENTED 0x1"},
		{"INT_ADD", "INT_ADD 0x1"},
	}
	for _, tt := range tests {
		t.Run(tt.mnemonic, func(t *testing.T) {
			json := `{"threads": [{"path": "a", "instructions": [{"address": 4096, "text": "x", "ops": [` +
				`{"opcode": "` + tt.mnemonic + `", "inputs": [{"space": "const", "offset": 1, "size": 4}]}]}]}]}`
			trace, err := Load(strings.NewReader(json))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			emu, err := trace.Replay(stepper.Schedule{PTicks: 1, Thread: "a"})
			if err != nil {
				t.Fatal(err)
			}
			th, _ := emu.Thread("a")
			frame, ok := th.Frame()
			if !ok {
				t.Fatal("no frame")
			}
			rows := stepper.Format(trace.Language(), frame, false).Rows
			if got := rows[0].Code(); got != tt.want {
				t.Errorf("row = %q, want %q", got, tt.want)
			}

			op := frame.Code()[0]
			unknown := op.Opcode == pcode.UNIMPLEMENTED
			if unknown != (tt.mnemonic != "INT_ADD") {
				t.Errorf("Opcode = %v", op.Opcode)
			}
			if unknown && op.Mnemonic != tt.mnemonic {
				t.Errorf("Mnemonic = %q, want %q", op.Mnemonic, tt.mnemonic)
			}
			var unimpl bool
			for _, sp := range rows[0].(stepper.OpRow).Spans {
				unimpl = unimpl || sp.Category == stepper.CategoryUnimplemented
			}
			if unimpl != unknown {
				t.Errorf("unimpl span = %v, want %v", unimpl, unknown)
			}
		})
	}
}

func TestSchema(t *testing.T) {
	s := Schema()
	if s == nil {
		t.Fatal("Schema() returned nil")
	}
	if _, ok := s.Definitions["File"]; !ok {
		t.Errorf("schema has no File definition: %v", s.Definitions)
	}
}
