package cmdutil

import (
	"errors"
	"fmt"
)

// ExitError carries the exit status of the command cosy ran on the user's
// behalf, so teardown still runs before Main exits. A negative Code means the
// command was killed by a signal.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return "command was killed by a signal"
	}
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// ProcessCode is the status cosy itself exits with.
func (e *ExitError) ProcessCode() int {
	if e.Code < 0 {
		return 1
	}
	return e.Code
}

// FlagError is a usage mistake. Main prints the usage of the command that
// rejected it.
type FlagError struct {
	Err error
}

func (e *FlagError) Error() string { return e.Err.Error() }
func (e *FlagError) Unwrap() error { return e.Err }

// FlagErrorf formats a FlagError. %w wraps as it does for fmt.Errorf.
func FlagErrorf(format string, args ...any) error {
	return &FlagError{Err: fmt.Errorf(format, args...)}
}

// SilentError tells Main the command already reported what went wrong.
var SilentError = errors.New("error already reported")
