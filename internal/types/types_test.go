package types

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestRepresent(t *testing.T) {
	tests := []struct {
		name  string
		typ   string
		data  []byte
		order binary.ByteOrder
		want  string
	}{
		{"int negative", "int", []byte{0xff, 0xff, 0xff, 0xff}, binary.LittleEndian, "-1"},
		{"uint little endian", "uint", []byte{0x01, 0x00, 0x00, 0x00}, binary.LittleEndian, "1"},
		{"uint big endian", "uint", []byte{0x00, 0x00, 0x00, 0x01}, binary.BigEndian, "1"},
		{"short", "short", []byte{0xfe, 0xff}, binary.LittleEndian, "-2"},
		{"byte", "byte", []byte{0xff}, binary.LittleEndian, "255"},
		{"float", "float", []byte{0x00, 0x00, 0x80, 0x3f}, binary.LittleEndian, "1"},
		{"double", "double", []byte{0, 0, 0, 0, 0, 0, 0xf8, 0x3f}, binary.LittleEndian, "1.5"},
		{"bool", "bool", []byte{2}, binary.LittleEndian, "true"},
		{"char", "char", []byte{'a'}, binary.LittleEndian, "'a'"},
		{"pointer", "pointer", []byte{0x00, 0x10, 0, 0, 0, 0, 0, 0}, binary.LittleEndian, "0x0000000000001000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := Parse(tt.typ)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.typ, err)
			}
			got, err := dt.Represent(tt.data, tt.order)
			if err != nil {
				t.Fatalf("Represent() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Represent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepresentSizeMismatch(t *testing.T) {
	dt, _ := Parse("int")
	if _, err := dt.Represent([]byte{1, 2}, binary.LittleEndian); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Represent() error = %v, want ErrSizeMismatch", err)
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("struct foo"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Parse() error = %v, want ErrUnknownType", err)
	}
}
