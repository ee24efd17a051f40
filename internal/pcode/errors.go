package pcode

import "errors"

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrUnknownSpace  = errors.New("unknown address space")
	ErrSizeMismatch  = errors.New("data size does not match varnode size")
)
