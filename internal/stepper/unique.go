package stepper

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"pcodestep/internal/pcode"
	"pcodestep/internal/types"
)

// RefType is how a frame's ops touch a unique: a bit for reads, a bit for
// writes.
type RefType int

const (
	RefNone      RefType = 0
	RefRead      RefType = 1
	RefWrite     RefType = 2
	RefReadWrite RefType = RefRead | RefWrite
)

func (r RefType) String() string {
	switch r {
	case RefNone:
		return "NONE"
	case RefRead:
		return "READ"
	case RefWrite:
		return "WRITE"
	case RefReadWrite:
		return "READ_WRITE"
	}
	return fmt.Sprintf("RefType(%d)", int(r))
}

// Union joins two access directions.
func (r RefType) Union(o RefType) RefType { return r | o }

// UniqueEntry is one unique variable of a frame with its decoded value. Bytes
// and Value are nil when the execution state has never recorded the
// variable.
type UniqueEntry struct {
	Varnode pcode.Varnode
	Ref     RefType
	Bytes   []byte
	Value   *big.Int
	Type    types.DataType
	Repr    string
}

// Name renders the variable as "$U<offset>:<size>".
func (e UniqueEntry) Name() string {
	return fmt.Sprintf("$U%x:%d", e.Varnode.Offset, e.Varnode.Size)
}

// Known reports whether the variable's bytes are defined.
func (e UniqueEntry) Known() bool { return e.Bytes != nil }

// BytesString renders the bytes in hex, or "??" when unknown.
func (e UniqueEntry) BytesString() string {
	if e.Bytes == nil {
		return "??"
	}
	parts := make([]string, len(e.Bytes))
	for i, b := range e.Bytes {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// ValueString renders the value in hex, or "??" when unknown.
func (e UniqueEntry) ValueString() string {
	if e.Value == nil {
		return "??"
	}
	return "0x" + e.Value.Text(16)
}

// TypeName returns the assigned type's name, or "".
func (e UniqueEntry) TypeName() string {
	if e.Type == nil {
		return ""
	}
	return e.Type.Name()
}

// CollectUniques returns every unique the frame's ops touch, one entry per
// (offset, size), sorted ascending. Outputs count as writes and inputs as
// reads. Ranges that overlap without being identical stay separate.
func CollectUniques(frame *pcode.Frame) []UniqueEntry {
	var entries []UniqueEntry
	add := func(v pcode.Varnode, ref RefType) {
		if !v.IsUnique() {
			return
		}
		i, found := slices.BinarySearchFunc(entries, v, func(e UniqueEntry, v pcode.Varnode) int {
			return e.Varnode.Compare(v)
		})
		if found {
			entries[i].Ref = entries[i].Ref.Union(ref)
			return
		}
		entries = slices.Insert(entries, i, UniqueEntry{Varnode: v, Ref: ref})
	}
	for _, op := range frame.Code() {
		if op.Output != nil {
			add(*op.Output, RefWrite)
		}
		for _, in := range op.Inputs {
			add(in, RefRead)
		}
	}
	return entries
}

// Decode fills in the entry's bytes, value and representation from state.
func (e *UniqueEntry) Decode(state pcode.ExecutionState, order binary.ByteOrder) {
	e.Bytes, e.Value = nil, nil
	if state != nil {
		if data, ok := state.Read(e.Varnode); ok {
			e.Bytes = data
			e.Value = unsignedValue(data, order)
		}
	}
	e.Repr = e.represent(order)
}

func (e *UniqueEntry) represent(order binary.ByteOrder) string {
	if e.Bytes == nil {
		return ""
	}
	if e.Type != nil {
		repr, err := e.Type.Represent(e.Bytes, order)
		if err != nil {
			return "??"
		}
		return repr
	}
	return e.Value.String()
}

// AssignType resolves candidate in catalog and, on success, sets it as the
// entry's type. A nil candidate clears the type. On failure the entry is left
// as it was.
func (e *UniqueEntry) AssignType(catalog *types.Catalog, candidate types.DataType, order binary.ByteOrder) error {
	if candidate == nil {
		e.Type = nil
		e.Repr = e.represent(order)
		return nil
	}
	var resolved types.DataType
	err := catalog.Transaction("Resolve DataType", func(tx *types.Tx) error {
		var err error
		resolved, err = tx.Resolve(candidate)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %s as %s: %w", ErrTypeResolution, e.Name(), candidate.Name(), err)
	}
	e.Type = resolved
	e.Repr = e.represent(order)
	return nil
}

// Uniques collects and decodes the unique entries of frame.
func Uniques(frame *pcode.Frame, state pcode.ExecutionState, order binary.ByteOrder) []UniqueEntry {
	entries := CollectUniques(frame)
	for i := range entries {
		entries[i].Decode(state, order)
	}
	return entries
}

func unsignedValue(data []byte, order binary.ByteOrder) *big.Int {
	if order == binary.LittleEndian {
		be := slices.Clone(data)
		slices.Reverse(be)
		return new(big.Int).SetBytes(be)
	}
	return new(big.Int).SetBytes(data)
}
