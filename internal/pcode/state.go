package pcode

import (
	"fmt"
	"maps"
)

// ExecutionState is a read-only view of a thread's machine state. Read
// returns false when any byte of v has never been recorded.
type ExecutionState interface {
	Read(v Varnode) ([]byte, bool)
}

// ByteState is a sparse byte store keyed by space name. The zero value is
// not usable; call NewByteState.
type ByteState struct {
	spaces map[string]map[uint64]byte
}

func NewByteState() *ByteState {
	return &ByteState{spaces: make(map[string]map[uint64]byte)}
}

// Write records data at v. len(data) must equal v.Size.
func (s *ByteState) Write(v Varnode, data []byte) error {
	if len(data) != v.Size {
		return fmt.Errorf("%w: %s got %d bytes", ErrSizeMismatch, v, len(data))
	}
	space := s.spaces[v.Space.Name]
	if space == nil {
		space = make(map[uint64]byte)
		s.spaces[v.Space.Name] = space
	}
	for i, b := range data {
		space[v.Offset+uint64(i)] = b
	}
	return nil
}

func (s *ByteState) Read(v Varnode) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	space := s.spaces[v.Space.Name]
	if space == nil || v.Size <= 0 {
		return nil, false
	}
	out := make([]byte, v.Size)
	for i := range out {
		b, ok := space[v.Offset+uint64(i)]
		if !ok {
			return nil, false
		}
		out[i] = b
	}
	return out, true
}

// Clone returns an independent copy.
func (s *ByteState) Clone() *ByteState {
	c := NewByteState()
	for name, space := range s.spaces {
		c.spaces[name] = maps.Clone(space)
	}
	return c
}
