// Package types interprets raw bytes as typed values and keeps a catalog of
// the types assigned to unique variables.
package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DataType interprets bytes. Length is the size in bytes the type expects.
type DataType interface {
	Name() string
	Length() int
	Represent(data []byte, order binary.ByteOrder) (string, error)
}

// Integer is a fixed-size two's complement or unsigned integer.
type Integer struct {
	name   string
	size   int
	signed bool
}

func (t Integer) Name() string { return t.name }
func (t Integer) Length() int  { return t.size }

func (t Integer) Represent(data []byte, order binary.ByteOrder) (string, error) {
	u, err := readUint(data, t.size, order)
	if err != nil {
		return "", err
	}
	if !t.signed {
		return strconv.FormatUint(u, 10), nil
	}
	shift := uint(64 - 8*t.size)
	return strconv.FormatInt(int64(u<<shift)>>shift, 10), nil
}

// Float is an IEEE 754 binary32 or binary64 value.
type Float struct {
	name string
	size int
}

func (t Float) Name() string { return t.name }
func (t Float) Length() int  { return t.size }

func (t Float) Represent(data []byte, order binary.ByteOrder) (string, error) {
	u, err := readUint(data, t.size, order)
	if err != nil {
		return "", err
	}
	if t.size == 4 {
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(u))), 'g', -1, 32), nil
	}
	return strconv.FormatFloat(math.Float64frombits(u), 'g', -1, 64), nil
}

// Bool is a one byte boolean; any non-zero byte is true.
type Bool struct{}

func (Bool) Name() string { return "bool" }
func (Bool) Length() int  { return 1 }

func (Bool) Represent(data []byte, _ binary.ByteOrder) (string, error) {
	if len(data) != 1 {
		return "", fmt.Errorf("%w: bool got %d bytes", ErrSizeMismatch, len(data))
	}
	return strconv.FormatBool(data[0] != 0), nil
}

// Char is a single byte character.
type Char struct{}

func (Char) Name() string { return "char" }
func (Char) Length() int  { return 1 }

func (Char) Represent(data []byte, _ binary.ByteOrder) (string, error) {
	if len(data) != 1 {
		return "", fmt.Errorf("%w: char got %d bytes", ErrSizeMismatch, len(data))
	}
	return strconv.QuoteRuneToASCII(rune(data[0])), nil
}

// Pointer is an address-sized value shown in hex.
type Pointer struct {
	size int
}

func (t Pointer) Name() string { return fmt.Sprintf("pointer%d", t.size*8) }
func (t Pointer) Length() int  { return t.size }

func (t Pointer) Represent(data []byte, order binary.ByteOrder) (string, error) {
	u, err := readUint(data, t.size, order)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%0*x", t.size*2, u), nil
}

var builtins = []DataType{
	Integer{name: "byte", size: 1},
	Integer{name: "sbyte", size: 1, signed: true},
	Integer{name: "ushort", size: 2},
	Integer{name: "short", size: 2, signed: true},
	Integer{name: "uint", size: 4},
	Integer{name: "int", size: 4, signed: true},
	Integer{name: "ulong", size: 8},
	Integer{name: "long", size: 8, signed: true},
	Float{name: "float", size: 4},
	Float{name: "double", size: 8},
	Bool{},
	Char{},
	Pointer{size: 4},
	Pointer{size: 8},
}

// Builtins returns the built-in types.
func Builtins() []DataType {
	out := make([]DataType, len(builtins))
	copy(out, builtins)
	return out
}

// Parse returns the built-in type with the given name. "void *" and
// "pointer" select the 64-bit pointer.
func Parse(name string) (DataType, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "pointer", "void *", "void*":
		return Pointer{size: 8}, nil
	}
	for _, dt := range builtins {
		if dt.Name() == name {
			return dt, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func readUint(data []byte, size int, order binary.ByteOrder) (uint64, error) {
	if len(data) != size {
		return 0, fmt.Errorf("%w: want %d bytes, got %d", ErrSizeMismatch, size, len(data))
	}
	switch size {
	case 1:
		return uint64(data[0]), nil
	case 2:
		return uint64(order.Uint16(data)), nil
	case 4:
		return uint64(order.Uint32(data)), nil
	case 8:
		return order.Uint64(data), nil
	}
	return 0, fmt.Errorf("%w: unsupported size %d", ErrSizeMismatch, size)
}
