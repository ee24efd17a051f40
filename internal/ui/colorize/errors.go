package colorize

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrBadColor        = errors.New("color is not #rrggbb")
)
