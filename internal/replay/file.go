package replay

import (
	"encoding/hex"
	"strings"

	"github.com/invopop/jsonschema"
)

// File is the JSON description of a recorded trace: the language, and per
// thread the instructions it executed with their p-code and, optionally,
// which ops ran and what they wrote.
type File struct {
	Name     string       `json:"name" jsonschema:"title=Name,description=Trace name shown in the header"`
	Snap     int64        `json:"snap,omitempty" jsonschema:"title=Snapshot,description=Snapshot the recording starts at"`
	Language LanguageSpec `json:"language" jsonschema:"title=Language"`
	Threads  []ThreadSpec `json:"threads" jsonschema:"title=Threads,minItems=1"`
}

// LanguageSpec describes the target.
type LanguageSpec struct {
	ID        string         `json:"id" jsonschema:"title=Language ID,description=Processor:endian:size:variant,example=AARCH64:LE:64:v8A"`
	BigEndian bool           `json:"bigEndian,omitempty" jsonschema:"title=Big Endian"`
	Registers []RegisterSpec `json:"registers,omitempty" jsonschema:"title=Registers"`
	Userops   []UseropSpec   `json:"userops,omitempty" jsonschema:"title=User Operations"`
}

type RegisterSpec struct {
	Name   string `json:"name"`
	Offset uint64 `json:"offset"`
	Size   int    `json:"size" jsonschema:"minimum=1"`
}

type UseropSpec struct {
	ID   int    `json:"id" jsonschema:"minimum=0"`
	Name string `json:"name"`
}

// ThreadSpec is one thread's recording. State holds values known before the
// first instruction.
type ThreadSpec struct {
	Path         string            `json:"path" jsonschema:"title=Thread Path"`
	State        []WriteSpec       `json:"state,omitempty" jsonschema:"title=Initial State"`
	Instructions []InstructionSpec `json:"instructions" jsonschema:"title=Instructions"`
}

// InstructionSpec is one executed machine instruction. Exec lists the ops in
// the order they ran; when it is empty every op runs once, in order, without
// recorded writes.
type InstructionSpec struct {
	Address uint64       `json:"address"`
	Bytes   HexBytes     `json:"bytes,omitempty"`
	Text    string       `json:"text,omitempty" jsonschema:"description=Disassembly; decoded from bytes when empty"`
	Symbol  string       `json:"symbol,omitempty" jsonschema:"description=Enclosing symbol, possibly mangled"`
	Ops     []OpSpec     `json:"ops"`
	Exec    []StepSpec   `json:"exec,omitempty"`
	Userops []UseropSpec `json:"userops,omitempty" jsonschema:"description=Userops defined by the emulator's library"`
}

type OpSpec struct {
	Opcode string        `json:"opcode" jsonschema:"example=COPY,example=INT_ADD"`
	Output *VarnodeSpec  `json:"output,omitempty"`
	Inputs []VarnodeSpec `json:"inputs,omitempty"`
}

type VarnodeSpec struct {
	Space  string `json:"space" jsonschema:"enum=const,enum=unique,enum=register,enum=ram"`
	Offset uint64 `json:"offset"`
	Size   int    `json:"size" jsonschema:"minimum=1"`
}

// StepSpec is one executed p-code step. Branch marks an op that left the
// instruction.
type StepSpec struct {
	Op     int         `json:"op" jsonschema:"minimum=0"`
	Writes []WriteSpec `json:"writes,omitempty"`
	Branch bool        `json:"branch,omitempty"`
}

type WriteSpec struct {
	Varnode VarnodeSpec `json:"varnode"`
	Bytes   HexBytes    `json:"bytes"`
}

// HexBytes is a byte string written as hex, optionally space separated.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	data, err := hex.DecodeString(strings.ReplaceAll(string(text), " ", ""))
	if err != nil {
		return err
	}
	*b = data
	return nil
}

func (HexBytes) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     "^([0-9a-fA-F]{2} ?)*$",
		Description: "Hex encoded bytes",
	}
}

// Schema returns the JSON schema of File.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	return reflector.Reflect(&File{})
}
