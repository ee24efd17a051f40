package disasm

import (
	"errors"
	"testing"
)

func TestArchForLanguage(t *testing.T) {
	tests := []struct {
		id   string
		want Arch
	}{
		{"AARCH64:LE:64:v8A", ArchARM64},
		{"aarch64:BE:64:default", ArchARM64},
		{"x86:LE:64:default", ArchUnknown},
		{"", ArchUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ArchForLanguage(tt.id); got != tt.want {
				t.Errorf("ArchForLanguage(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		arch    Arch
		raw     []byte
		text    string
		wantOp  string
		wantErr error
		want    string
	}{
		{"arm64 ret", ArchARM64, []byte{0xc0, 0x03, 0x5f, 0xd6}, "", "ret", nil, ""},
		{"recorded text", ArchUnknown, []byte{0x48, 0x89, 0xe5}, "MOV RBP,RSP", "mov", nil, "0x1000  MOV RBP,RSP"},
		{"raw fallback", ArchUnknown, []byte{0x90}, "", "", nil, "0x1000  .90"},
		{"short", ArchARM64, []byte{0xc0}, "", "", ErrShortInstruction, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := Decode(tt.arch, 0x1000, tt.raw, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if inst.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", inst.Op, tt.wantOp)
			}
			if got := inst.String(); tt.want != "" && got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstName(t *testing.T) {
	inst := Inst{VA: 0x2000, Text: "nop", Symbol: "_ZN3foo3barEv"}
	if got := inst.Name(); got != "foo::bar()" {
		t.Errorf("Name() = %q, want foo::bar()", got)
	}
	if got := inst.String(); got != "0x2000 <foo::bar()>  nop" {
		t.Errorf("String() = %q", got)
	}

	plain := Inst{VA: 0x2000, Text: "nop", Symbol: "main"}
	if got := plain.Name(); got != "main" {
		t.Errorf("Name() = %q, want main", got)
	}
}
