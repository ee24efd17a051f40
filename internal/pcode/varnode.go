package pcode

import (
	"cmp"
	"fmt"
)

// SpaceKind classifies an address space.
type SpaceKind int

const (
	SpaceOther SpaceKind = iota
	SpaceRAM
	SpaceRegister
	SpaceUnique
	SpaceConstant
)

func (k SpaceKind) String() string {
	switch k {
	case SpaceRAM:
		return "ram"
	case SpaceRegister:
		return "register"
	case SpaceUnique:
		return "unique"
	case SpaceConstant:
		return "const"
	}
	return "other"
}

// Space is an address space of a language. ID is the value a LOAD or
// STORE carries in its first (constant) input to name the space.
type Space struct {
	ID       uint64
	Name     string
	Kind     SpaceKind
	WordSize uint64
}

var (
	ConstSpace    = Space{ID: 0, Name: "const", Kind: SpaceConstant, WordSize: 1}
	UniqueSpace   = Space{ID: 1, Name: "unique", Kind: SpaceUnique, WordSize: 1}
	RegisterSpace = Space{ID: 2, Name: "register", Kind: SpaceRegister, WordSize: 1}
	RAMSpace      = Space{ID: 3, Name: "ram", Kind: SpaceRAM, WordSize: 1}
)

// Varnode identifies a location: a space, an offset within it, and a size in
// bytes. It never carries a value, except that for the constant space the
// offset is the constant.
type Varnode struct {
	Space  Space
	Offset uint64
	Size   int
}

// Unique returns a varnode in the unique space.
func Unique(offset uint64, size int) Varnode {
	return Varnode{Space: UniqueSpace, Offset: offset, Size: size}
}

// Const returns a constant varnode.
func Const(value uint64, size int) Varnode {
	return Varnode{Space: ConstSpace, Offset: value, Size: size}
}

// Reg returns a varnode in the register space.
func Reg(offset uint64, size int) Varnode {
	return Varnode{Space: RegisterSpace, Offset: offset, Size: size}
}

// RAM returns a varnode in the ram space.
func RAM(offset uint64, size int) Varnode {
	return Varnode{Space: RAMSpace, Offset: offset, Size: size}
}

func (v Varnode) IsUnique() bool   { return v.Space.Kind == SpaceUnique }
func (v Varnode) IsConstant() bool { return v.Space.Kind == SpaceConstant }
func (v Varnode) IsRegister() bool { return v.Space.Kind == SpaceRegister }
func (v Varnode) IsAddress() bool  { return v.Space.Kind == SpaceRAM }

// Compare orders varnodes by space, then offset, then size.
func (v Varnode) Compare(o Varnode) int {
	if c := cmp.Compare(v.Space.ID, o.Space.ID); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Offset, o.Offset); c != 0 {
		return c
	}
	return cmp.Compare(v.Size, o.Size)
}

func (v Varnode) String() string {
	return fmt.Sprintf("(%s, 0x%x, %d)", v.Space.Name, v.Offset, v.Size)
}

// SignedOffset interprets the offset of a constant as a two's complement
// value of the varnode's size.
func (v Varnode) SignedOffset() int64 {
	if v.Size <= 0 || v.Size >= 8 {
		return int64(v.Offset)
	}
	shift := uint(64 - 8*v.Size)
	return int64(v.Offset<<shift) >> shift
}
