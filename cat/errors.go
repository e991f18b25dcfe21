package cat

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrProtocol        = errors.New("protocol error")
	ErrTimeout         = errors.New("timeout")
	ErrIO              = errors.New("i/o error")
	ErrOutOfMemory     = errors.New("out of memory")
	ErrNotAvailable    = errors.New("not available")
)

// CommandError ties a failure to the command that was in flight.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%q: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
