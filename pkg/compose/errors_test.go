package compose

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeError_Error(t *testing.T) {
	err := &ComposeError{Op: "up", Message: "docker compose up failed"}
	assert.Equal(t, "docker compose up failed", err.Error())

	err.Err = errors.New("exit status 1")
	assert.Equal(t, "docker compose up failed: exit status 1", err.Error())
}

func TestComposeError_Unwrap(t *testing.T) {
	err := errLocked("orders", "/tmp/cosy-orders.lock")
	assert.ErrorIs(t, err, ErrSetupLocked)
}

func TestComposeError_FormatUserError(t *testing.T) {
	tests := []struct {
		name      string
		err       *ComposeError
		wantParts []string
	}{
		{
			name:      "basic error",
			err:       &ComposeError{Message: "Something failed"},
			wantParts: []string{"Error: Something failed"},
		},
		{
			name: "with stderr",
			err: &ComposeError{
				Message: "docker compose up failed",
				Err:     errors.New("exit status 1"),
				Stderr:  "service \"db\" has no image\n",
			},
			wantParts: []string{"Details: exit status 1", `Output: service "db" has no image`},
		},
		{
			name:      "with next steps",
			err:       errLocked("orders", "/tmp/cosy-orders.lock"),
			wantParts: []string{"Next Steps:", "1. Wait for the other test run to finish", "3. Remove a stale lock file: rm /tmp/cosy-orders.lock"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.FormatUserError()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("FormatUserError() missing %q, got:\n%s", part, got)
				}
			}
		})
	}
}

type notFound struct{}

func (notFound) Error() string { return "No such container: x" }
func (notFound) NotFound()     {}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(notFound{}))
	assert.False(t, isNotFound(errors.New("boom")))
}
