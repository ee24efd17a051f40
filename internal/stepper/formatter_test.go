package stepper

import (
	"encoding/binary"
	"reflect"
	"testing"

	"pcodestep/internal/pcode"
)

func countCurrent(rows []Row) int {
	n := 0
	for _, r := range rows {
		if IsCurrent(r) {
			n++
		}
	}
	return n
}

func TestFormatScenarioA(t *testing.T) {
	trace := newTestTrace("a")
	frame := scenarioFrame(1, 2)

	got := Format(trace.Language(), frame, false)

	if len(got.Rows) != 4 {
		t.Fatalf("Format() returned %d rows, want 4: %v", len(got.Rows), got.Rows)
	}
	for i, wantCurrent := range []bool{false, true, false} {
		op, ok := got.Rows[i].(OpRow)
		if !ok {
			t.Fatalf("row %d is %T, want OpRow", i, got.Rows[i])
		}
		if op.Current != wantCurrent {
			t.Errorf("row %d Current = %v, want %v", i, op.Current, wantCurrent)
		}
		if op.Op != &frame.Code()[i] {
			t.Errorf("row %d bound to wrong op", i)
		}
	}
	br, ok := got.Rows[3].(BranchRow)
	if !ok {
		t.Fatalf("row 3 is %T, want BranchRow", got.Rows[3])
	}
	if br.Branched != 2 {
		t.Errorf("BranchRow.Branched = %d, want 2", br.Branched)
	}
	if got.Next != 1 {
		t.Errorf("Next = %d, want 1", got.Next)
	}
	for i, r := range got.Rows {
		if r.Sequence() != i {
			t.Errorf("row %d Sequence() = %d", i, r.Sequence())
		}
	}
}

func TestFormatCurrentRow(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		wantCount int
		wantNext  int
	}{
		{"first op", 0, 1, 0},
		{"middle op", 1, 1, 1},
		{"last op", 2, 1, 2},
		{"finished", 3, 0, -1},
	}
	lang := newTestTrace("cur").Language()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(lang, scenarioFrame(tt.index, -1), false)
			if n := countCurrent(got.Rows); n != tt.wantCount {
				t.Errorf("current rows = %d, want %d", n, tt.wantCount)
			}
			if got.Next != tt.wantNext {
				t.Errorf("Next = %d, want %d", got.Next, tt.wantNext)
			}
		})
	}
}

func TestFormatSyntheticRows(t *testing.T) {
	lang := newTestTrace("syn").Language()
	tests := []struct {
		name     string
		index    int
		branched int
		want     string
	}{
		{"pending", 1, -1, ""},
		{"fallthrough", 3, -1, "fallthrough"},
		{"branch", 3, 2, "branch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Format(lang, scenarioFrame(tt.index, tt.branched), false).Rows
			var branches, falls int
			for _, r := range rows {
				switch r.(type) {
				case BranchRow:
					branches++
				case FallthroughRow:
					falls++
				}
			}
			if branches+falls > 1 {
				t.Fatalf("got %d branch and %d fallthrough rows", branches, falls)
			}
			last := rows[len(rows)-1]
			switch tt.want {
			case "":
				if branches+falls != 0 {
					t.Errorf("unexpected synthetic row %T", last)
				}
			case "fallthrough":
				if _, ok := last.(FallthroughRow); !ok {
					t.Errorf("last row = %T, want FallthroughRow", last)
				}
			case "branch":
				if _, ok := last.(BranchRow); !ok {
					t.Errorf("last row = %T, want BranchRow", last)
				}
			}
		})
	}
}

func TestFormatText(t *testing.T) {
	lang := newTestTrace("text").Language()
	out := pcode.Unique(0x100, 8)
	code := []pcode.Op{
		{Opcode: pcode.INT_ADD, Output: &out, Inputs: []pcode.Varnode{pcode.Reg(0x20, 8), pcode.Const(8, 8)}, Seq: pcode.SeqNum{Time: 0}},
		{Opcode: pcode.LOAD, Output: ptr(pcode.Reg(0x0, 8)), Inputs: []pcode.Varnode{pcode.Const(pcode.RAMSpace.ID, 8), out}, Seq: pcode.SeqNum{Time: 1}},
		{Opcode: pcode.STORE, Inputs: []pcode.Varnode{pcode.Const(pcode.RAMSpace.ID, 8), out, pcode.Reg(0x0, 8)}, Seq: pcode.SeqNum{Time: 2}},
		{Opcode: pcode.CALLOTHER, Inputs: []pcode.Varnode{pcode.Const(0, 4), pcode.Reg(0x0, 8)}, Seq: pcode.SeqNum{Time: 3}},
		{Opcode: pcode.CALLOTHER, Inputs: []pcode.Varnode{pcode.Const(7, 4)}, Seq: pcode.SeqNum{Time: 4}},
		{Opcode: pcode.CALLOTHER, Inputs: []pcode.Varnode{pcode.Const(9, 4)}, Seq: pcode.SeqNum{Time: 5}},
		{Opcode: pcode.BRANCH, Inputs: []pcode.Varnode{pcode.RAM(0x401000, 8)}, Seq: pcode.SeqNum{Time: 6}},
		{Opcode: pcode.COPY, Output: ptr(pcode.Reg(0x99, 4)), Inputs: []pcode.Varnode{pcode.Const(0xffffffffffffffff, 8)}, Seq: pcode.SeqNum{Time: 7}},
		{Opcode: pcode.UNIMPLEMENTED, Seq: pcode.SeqNum{Time: 8}},
	}
	frame := pcode.NewFrame(code, 0, -1, map[int]string{7: "emu_swi"})

	want := []string{
		"$U100 = INT_ADD RSP, 0x8",
		"RAX = LOAD ram($U100)",
		"STORE ram($U100), RAX",
		"syscall(RAX)",
		"emu_swi()",
		"9()",
		"BRANCH *[ram]0x401000",
		"(register, 0x99, 4) = COPY -0x1",
		"UNIMPLEMENTED",
	}
	rows := Format(lang, frame, false).Rows
	if len(rows) != len(want) {
		t.Fatalf("Format() returned %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if got := rows[i].Code(); got != w {
			t.Errorf("row %d = %q, want %q", i, got, w)
		}
	}
}

func TestFormatCategories(t *testing.T) {
	lang := newTestTrace("cat").Language()
	code := []pcode.Op{
		{Opcode: pcode.CALLOTHER, Inputs: []pcode.Varnode{pcode.Const(0, 4)}, Seq: pcode.SeqNum{Time: 0}},
		{Opcode: pcode.UNIMPLEMENTED, Seq: pcode.SeqNum{Time: 1}},
		{Opcode: pcode.Opcode(777), Seq: pcode.SeqNum{Time: 2}},
	}
	rows := Format(lang, pcode.NewFrame(code, 0, -1, nil), false).Rows

	first := rows[0].(OpRow).Spans
	if first[0].Category != CategoryUserop || first[0].Text != "syscall" {
		t.Errorf("userop span = %+v", first[0])
	}
	if first[1].Category != CategorySeparator {
		t.Errorf("paren span category = %v, want sep", first[1].Category)
	}
	for _, i := range []int{1, 2} {
		sp := rows[i].(OpRow).Spans[0]
		if sp.Category != CategoryUnimplemented {
			t.Errorf("row %d mnemonic category = %v, want unimpl", i, sp.Category)
		}
	}
}

func TestFormatLineLabels(t *testing.T) {
	lang := newTestTrace("lab").Language()
	flag := pcode.Unique(0x80, 1)
	code := []pcode.Op{
		{Opcode: pcode.CBRANCH, Inputs: []pcode.Varnode{pcode.Const(2, 4), flag}, Seq: pcode.SeqNum{Time: 0}},
		{Opcode: pcode.COPY, Output: ptr(pcode.Reg(0x0, 8)), Inputs: []pcode.Varnode{pcode.Const(1, 8)}, Seq: pcode.SeqNum{Time: 1}},
		{Opcode: pcode.COPY, Output: ptr(pcode.Reg(0x20, 8)), Inputs: []pcode.Varnode{pcode.Const(2, 8)}, Seq: pcode.SeqNum{Time: 2}},
	}
	got := Format(lang, pcode.NewFrame(code, 2, -1, nil), true)

	wantCodes := []string{
		"  CBRANCH <0>, $U80",
		"  RAX = COPY 0x1",
		"<0>",
		"  RSP = COPY 0x2",
	}
	if len(got.Rows) != len(wantCodes) {
		t.Fatalf("Format() returned %d rows, want %d", len(got.Rows), len(wantCodes))
	}
	for i, w := range wantCodes {
		if c := got.Rows[i].Code(); c != w {
			t.Errorf("row %d = %q, want %q", i, c, w)
		}
	}
	if _, ok := got.Rows[2].(LabelRow); !ok {
		t.Errorf("row 2 is %T, want LabelRow", got.Rows[2])
	}
	if got.Next != 3 {
		t.Errorf("Next = %d, want 3", got.Next)
	}
}

func TestFormatTemplatesMismatch(t *testing.T) {
	lang := newTestTrace("mis").Language()
	frame := scenarioFrame(0, -1)
	tpls := pcode.Templates(frame.Code())
	tpls = append(tpls, tpls[0])

	f := &Formatter{Lang: lang, Frame: frame}
	got := f.FormatTemplates(tpls)
	if len(got.Rows) != 3 {
		t.Errorf("FormatTemplates() returned %d rows, want 3", len(got.Rows))
	}
}

func copyCode(code []pcode.Op) []pcode.Op {
	out := make([]pcode.Op, len(code))
	for i, op := range code {
		out[i] = op
		if op.Output != nil {
			v := *op.Output
			out[i].Output = &v
		}
		out[i].Inputs = append([]pcode.Varnode(nil), op.Inputs...)
	}
	return out
}

func TestFormatRepeatable(t *testing.T) {
	trace := newTestTrace("a")
	state := pcode.NewByteState()
	if err := state.Write(pcode.Unique(0x0, 4), []byte{0x2a, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	for _, indent := range []bool{false, true} {
		frame := scenarioFrame(1, 2)
		before := copyCode(frame.Code())

		first := Format(trace.Language(), frame, indent)
		second := Format(trace.Language(), frame, indent)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("indent=%v: Format() differs between calls:\n%v\n%v", indent, first, second)
		}

		u1 := Uniques(frame, state, binary.LittleEndian)
		u2 := Uniques(frame, state, binary.LittleEndian)
		if !reflect.DeepEqual(u1, u2) {
			t.Errorf("indent=%v: Uniques() differs between calls:\n%v\n%v", indent, u1, u2)
		}

		if !reflect.DeepEqual(frame.Code(), before) {
			t.Errorf("indent=%v: formatting changed the frame's ops", indent)
		}
		if frame.Index() != 1 || frame.Branched() != 2 {
			t.Errorf("indent=%v: frame position changed to %d, %d", indent, frame.Index(), frame.Branched())
		}
	}
}
