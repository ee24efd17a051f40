package pcode

import (
	"encoding/binary"
	"fmt"
)

// Register is a named slice of the register space.
type Register struct {
	Name   string
	Offset uint64
	Size   int
}

// Language describes what the formatter and decoder need to know about a
// target: byte order, address spaces, register names and userop names.
type Language struct {
	ID        string
	BigEndian bool
	Spaces    []Space
	Registers []Register
	Userops   map[int]string
}

// NewLanguage returns a language with the four standard spaces.
func NewLanguage(id string, bigEndian bool) *Language {
	return &Language{
		ID:        id,
		BigEndian: bigEndian,
		Spaces:    []Space{ConstSpace, UniqueSpace, RegisterSpace, RAMSpace},
		Userops:   map[int]string{},
	}
}

// ByteOrder returns the byte order of values in the language's spaces.
func (l *Language) ByteOrder() binary.ByteOrder {
	if l.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// AddRegister appends a register definition.
func (l *Language) AddRegister(name string, offset uint64, size int) {
	l.Registers = append(l.Registers, Register{Name: name, Offset: offset, Size: size})
}

// Register finds the register that exactly covers v.
func (l *Language) Register(v Varnode) (Register, bool) {
	if !v.IsRegister() {
		return Register{}, false
	}
	for _, r := range l.Registers {
		if r.Offset == v.Offset && r.Size == v.Size {
			return r, true
		}
	}
	return Register{}, false
}

// SpaceByID finds a space by the ID LOAD and STORE carry.
func (l *Language) SpaceByID(id uint64) (Space, bool) {
	for _, s := range l.Spaces {
		if s.ID == id {
			return s, true
		}
	}
	return Space{}, false
}

// SpaceByName finds a space by name.
func (l *Language) SpaceByName(name string) (Space, error) {
	for _, s := range l.Spaces {
		if s.Name == name {
			return s, nil
		}
	}
	return Space{}, fmt.Errorf("%w: %s", ErrUnknownSpace, name)
}

// UseropName returns the name of a language-defined userop.
func (l *Language) UseropName(id int) (string, bool) {
	name, ok := l.Userops[id]
	return name, ok
}
