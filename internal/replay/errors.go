package replay

import "errors"

var (
	ErrInvalidTrace = errors.New("invalid trace")
	ErrForeignTrace = errors.New("trace was not loaded by this service")
	ErrNoSuchThread = errors.New("no such thread")
)
