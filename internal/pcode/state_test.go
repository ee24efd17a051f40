package pcode

import (
	"bytes"
	"errors"
	"testing"
)

func TestByteStateReadWrite(t *testing.T) {
	s := NewByteState()
	v := Unique(0x10, 4)

	if _, ok := s.Read(v); ok {
		t.Fatal("Read() of empty state reported defined bytes")
	}
	if err := s.Write(v, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, ok := s.Read(v)
	if !ok || !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Read() = %v, %v", got, ok)
	}

	// Partially recorded ranges are undefined.
	if _, ok := s.Read(Unique(0x12, 4)); ok {
		t.Error("Read() of partially recorded range reported defined bytes")
	}
	// Same offset in another space is independent.
	if _, ok := s.Read(Reg(0x10, 4)); ok {
		t.Error("Read() leaked bytes across spaces")
	}
	if err := s.Write(v, []byte{1}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Write() short data error = %v, want ErrSizeMismatch", err)
	}
}

func TestByteStateClone(t *testing.T) {
	s := NewByteState()
	v := Unique(0, 1)
	_ = s.Write(v, []byte{7})

	c := s.Clone()
	_ = c.Write(v, []byte{9})

	got, _ := s.Read(v)
	if got[0] != 7 {
		t.Errorf("original mutated through clone: %v", got)
	}
}
