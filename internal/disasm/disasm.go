// Package disasm renders the machine instruction a thread has decoded, for
// the label shown above its p-code.
package disasm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ianlancetaylor/demangle"
	"golang.org/x/arch/arm64/arm64asm"
)

var ErrShortInstruction = errors.New("instruction bytes too short")

// Arch selects the decoder used when an instruction has no recorded text.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchARM64
)

// ArchForLanguage maps a language id such as "AARCH64:LE:64:v8A" to a
// decoder.
func ArchForLanguage(id string) Arch {
	proc, _, _ := strings.Cut(id, ":")
	switch strings.ToUpper(proc) {
	case "AARCH64", "ARM64":
		return ArchARM64
	}
	return ArchUnknown
}

// Inst is a decoded instruction.
type Inst struct {
	VA     uint64 // virtual address of instruction
	Raw    []byte // raw encoding
	Text   string // formatted disassembly string
	Op     string // mnemonic in lowercase
	Symbol string // symbol containing VA, possibly mangled
}

// Decode disassembles raw for arch. Text recorded with the trace wins over
// decoding; an unknown arch with no text falls back to the raw bytes.
func Decode(arch Arch, va uint64, raw []byte, text string) (Inst, error) {
	inst := Inst{VA: va, Raw: raw, Text: text}
	if text != "" {
		inst.Op, _, _ = strings.Cut(strings.ToLower(text), " ")
		return inst, nil
	}
	switch arch {
	case ArchARM64:
		if len(raw) < 4 {
			return inst, fmt.Errorf("%w: %d bytes at 0x%x", ErrShortInstruction, len(raw), va)
		}
		a, err := arm64asm.Decode(raw[:4])
		if err != nil {
			return inst, fmt.Errorf("decode 0x%x: %w", va, err)
		}
		inst.Text = strings.ToLower(a.String())
		inst.Op = strings.ToLower(a.Op.String())
	default:
		inst.Text = "." + hex.EncodeToString(raw)
	}
	return inst, nil
}

// Name returns the demangled symbol, or "".
func (i Inst) Name() string {
	if i.Symbol == "" {
		return ""
	}
	return demangle.Filter(i.Symbol, demangle.NoClones)
}

// String renders "0x<va> <symbol>  <text>".
func (i Inst) String() string {
	if name := i.Name(); name != "" {
		return fmt.Sprintf("0x%x <%s>  %s", i.VA, name, i.Text)
	}
	return fmt.Sprintf("0x%x  %s", i.VA, i.Text)
}
