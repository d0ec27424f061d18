package compose

import (
	"errors"
	"fmt"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
)

var (
	// ErrSetupLocked is returned when another process holds the project lock.
	ErrSetupLocked = errors.New("compose project is locked by another process")

	// ErrNotRunning is returned by health queries on a stopped container.
	ErrNotRunning = errors.New("container is not running")

	// ErrNoContainers is returned when a service has no containers.
	ErrNoContainers = errors.New("no containers found")
)

// ComposeError is a user-facing compose failure with remediation steps.
type ComposeError struct {
	Op        string   // Operation that failed (e.g., "up", "down", "logs")
	Err       error    // Underlying error
	Message   string   // Human-readable message
	Stderr    string   // Captured stderr of the docker CLI, if any
	NextSteps []string // Suggested remediation steps
}

func (e *ComposeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ComposeError) Unwrap() error {
	return e.Err
}

// FormatUserError formats the error for display with next steps.
func (e *ComposeError) FormatUserError() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", e.Message)

	if e.Err != nil {
		fmt.Fprintf(&sb, "  Details: %s\n", e.Err.Error())
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&sb, "  Output: %s\n", s)
	}

	if len(e.NextSteps) > 0 {
		sb.WriteString("\nNext Steps:\n")
		for i, step := range e.NextSteps {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, step)
		}
	}

	return sb.String()
}

func errCommandFailed(op string, args []string, stderr string, err error) *ComposeError {
	return &ComposeError{
		Op:      op,
		Err:     err,
		Stderr:  stderr,
		Message: fmt.Sprintf("docker %s failed", strings.Join(args, " ")),
		NextSteps: []string{
			"Check that the Docker daemon is running: docker info",
			"Check that the compose plugin is installed: docker compose version",
			"Validate the compose files: docker compose config",
		},
	}
}

func errContainerNotFound(id string, err error) *ComposeError {
	return &ComposeError{
		Op:      "inspect",
		Err:     err,
		Message: fmt.Sprintf("Container '%s' not found", id),
		NextSteps: []string{
			"List the project's containers: cosy ps",
		},
	}
}

func errLocked(name, path string) *ComposeError {
	return &ComposeError{
		Op:      "lock",
		Err:     ErrSetupLocked,
		Message: fmt.Sprintf("Compose project '%s' is in use", name),
		NextSteps: []string{
			"Wait for the other test run to finish",
			"Use a unique project name (unique_project: true)",
			"Remove a stale lock file: rm " + path,
		},
	}
}

// isNotFound reports whether err is a Docker not-found error.
func isNotFound(err error) bool {
	return cerrdefs.IsNotFound(err)
}
