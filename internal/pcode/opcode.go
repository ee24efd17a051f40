// Package pcode models the architecture-independent micro-operations emitted
// for a single machine instruction: opcodes, varnodes, ops, templates, frames
// and the read-only execution state they run against.
package pcode

import "fmt"

// Opcode identifies a p-code operation.
type Opcode int

const (
	UNIMPLEMENTED Opcode = iota
	COPY
	LOAD
	STORE
	BRANCH
	CBRANCH
	BRANCHIND
	CALL
	CALLIND
	CALLOTHER
	RETURN
	INT_EQUAL
	INT_NOTEQUAL
	INT_SLESS
	INT_SLESSEQUAL
	INT_LESS
	INT_LESSEQUAL
	INT_ZEXT
	INT_SEXT
	INT_ADD
	INT_SUB
	INT_CARRY
	INT_SCARRY
	INT_SBORROW
	INT_2COMP
	INT_NEGATE
	INT_XOR
	INT_AND
	INT_OR
	INT_LEFT
	INT_RIGHT
	INT_SRIGHT
	INT_MULT
	INT_DIV
	INT_SDIV
	INT_REM
	INT_SREM
	BOOL_NEGATE
	BOOL_XOR
	BOOL_AND
	BOOL_OR
	FLOAT_EQUAL
	FLOAT_NOTEQUAL
	FLOAT_LESS
	FLOAT_LESSEQUAL
	FLOAT_NAN
	FLOAT_ADD
	FLOAT_DIV
	FLOAT_MULT
	FLOAT_SUB
	FLOAT_NEG
	FLOAT_ABS
	FLOAT_SQRT
	INT2FLOAT
	FLOAT2FLOAT
	TRUNC
	CEIL
	FLOOR
	ROUND
	PIECE
	SUBPIECE
	POPCOUNT
	LZCOUNT

	// LABEL is a template-only pseudo-op marking a line label. It never
	// appears in a frame's runtime code.
	LABEL Opcode = 1000
)

var mnemonics = map[Opcode]string{
	UNIMPLEMENTED:   "UNIMPLEMENTED",
	COPY:            "COPY",
	LOAD:            "LOAD",
	STORE:           "STORE",
	BRANCH:          "BRANCH",
	CBRANCH:         "CBRANCH",
	BRANCHIND:       "BRANCHIND",
	CALL:            "CALL",
	CALLIND:         "CALLIND",
	CALLOTHER:       "CALLOTHER",
	RETURN:          "RETURN",
	INT_EQUAL:       "INT_EQUAL",
	INT_NOTEQUAL:    "INT_NOTEQUAL",
	INT_SLESS:       "INT_SLESS",
	INT_SLESSEQUAL:  "INT_SLESSEQUAL",
	INT_LESS:        "INT_LESS",
	INT_LESSEQUAL:   "INT_LESSEQUAL",
	INT_ZEXT:        "INT_ZEXT",
	INT_SEXT:        "INT_SEXT",
	INT_ADD:         "INT_ADD",
	INT_SUB:         "INT_SUB",
	INT_CARRY:       "INT_CARRY",
	INT_SCARRY:      "INT_SCARRY",
	INT_SBORROW:     "INT_SBORROW",
	INT_2COMP:       "INT_2COMP",
	INT_NEGATE:      "INT_NEGATE",
	INT_XOR:         "INT_XOR",
	INT_AND:         "INT_AND",
	INT_OR:          "INT_OR",
	INT_LEFT:        "INT_LEFT",
	INT_RIGHT:       "INT_RIGHT",
	INT_SRIGHT:      "INT_SRIGHT",
	INT_MULT:        "INT_MULT",
	INT_DIV:         "INT_DIV",
	INT_SDIV:        "INT_SDIV",
	INT_REM:         "INT_REM",
	INT_SREM:        "INT_SREM",
	BOOL_NEGATE:     "BOOL_NEGATE",
	BOOL_XOR:        "BOOL_XOR",
	BOOL_AND:        "BOOL_AND",
	BOOL_OR:         "BOOL_OR",
	FLOAT_EQUAL:     "FLOAT_EQUAL",
	FLOAT_NOTEQUAL:  "FLOAT_NOTEQUAL",
	FLOAT_LESS:      "FLOAT_LESS",
	FLOAT_LESSEQUAL: "FLOAT_LESSEQUAL",
	FLOAT_NAN:       "FLOAT_NAN",
	FLOAT_ADD:       "FLOAT_ADD",
	FLOAT_DIV:       "FLOAT_DIV",
	FLOAT_MULT:      "FLOAT_MULT",
	FLOAT_SUB:       "FLOAT_SUB",
	FLOAT_NEG:       "FLOAT_NEG",
	FLOAT_ABS:       "FLOAT_ABS",
	FLOAT_SQRT:      "FLOAT_SQRT",
	INT2FLOAT:       "INT2FLOAT",
	FLOAT2FLOAT:     "FLOAT2FLOAT",
	TRUNC:           "TRUNC",
	CEIL:            "CEIL",
	FLOOR:           "FLOOR",
	ROUND:           "ROUND",
	PIECE:           "PIECE",
	SUBPIECE:        "SUBPIECE",
	POPCOUNT:        "POPCOUNT",
	LZCOUNT:         "LZCOUNT",
	LABEL:           "LABEL",
}

var byMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// String returns the opcode mnemonic, or "opcode<N>" for unknown values.
func (o Opcode) String() string {
	if name, ok := mnemonics[o]; ok {
		return name
	}
	return fmt.Sprintf("opcode%d", int(o))
}

// Known reports whether the opcode has a mnemonic.
func (o Opcode) Known() bool {
	_, ok := mnemonics[o]
	return ok
}

// ParseOpcode looks up an opcode by mnemonic.
func ParseOpcode(name string) (Opcode, error) {
	if op, ok := byMnemonic[name]; ok {
		return op, nil
	}
	return UNIMPLEMENTED, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
}

// IsBranch reports whether the opcode transfers control through its first
// input.
func (o Opcode) IsBranch() bool {
	switch o {
	case BRANCH, CBRANCH, CALL:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (o Opcode) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Opcode) UnmarshalText(text []byte) error {
	op, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
