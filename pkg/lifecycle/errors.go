package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrCoordinatorUsed is returned when a coordinator is driven past its
	// single scope (a second Bootstrap, or TearDown after Done).
	ErrCoordinatorUsed = errors.New("coordinator already used for a scope")

	// ErrStartFailed is wrapped by the bootstrap SetupError.
	ErrStartFailed = errors.New("containers did not start within the startup timeout")

	// ErrRemoveFailed is wrapped by the teardown SetupError.
	ErrRemoveFailed = errors.New("containers could not be removed")
)

// SetupError is a fatal lifecycle failure for a named environment.
// Op is "bootstrap" or "teardown".
type SetupError struct {
	Op    string
	Setup string
	Err   error
}

func (e *SetupError) Error() string {
	switch e.Op {
	case "bootstrap":
		return fmt.Sprintf("Failed to start containers for setup %s!", e.Setup)
	case "teardown":
		return fmt.Sprintf("Failed to remove containers for setup %s!", e.Setup)
	}
	return fmt.Sprintf("%s failed for setup %s: %v", e.Op, e.Setup, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
