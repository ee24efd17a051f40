package types

import "errors"

var (
	ErrUnknownType  = errors.New("unknown data type")
	ErrNilType      = errors.New("nil data type")
	ErrTypeConflict = errors.New("conflicting data type")
	ErrSizeMismatch = errors.New("data length does not match type length")
	ErrTxClosed     = errors.New("transaction closed")
)
