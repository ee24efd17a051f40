package stepper

import "errors"

var (
	ErrTypeResolution  = errors.New("type resolution failed")
	ErrNoSuchUnique    = errors.New("no such unique entry")
	ErrNoTrace         = errors.New("no trace in coordinates")
	ErrNoThread        = errors.New("no thread in coordinates")
	ErrStepUnavailable = errors.New("step unavailable")
	ErrBadSchedule     = errors.New("malformed schedule")
)
