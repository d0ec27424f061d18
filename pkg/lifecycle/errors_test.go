package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SetupError
		want string
	}{
		{name: "bootstrap", err: &SetupError{Op: "bootstrap", Setup: "orders"}, want: "Failed to start containers for setup orders!"},
		{name: "teardown", err: &SetupError{Op: "teardown", Setup: "orders"}, want: "Failed to remove containers for setup orders!"},
		{name: "other", err: &SetupError{Op: "dump", Setup: "orders", Err: errors.New("boom")}, want: "dump failed for setup orders: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestSetupError_Unwrap(t *testing.T) {
	err := &SetupError{Op: "teardown", Setup: "orders", Err: ErrRemoveFailed}
	assert.ErrorIs(t, err, ErrRemoveFailed)
	assert.NotErrorIs(t, err, ErrStartFailed)
}
