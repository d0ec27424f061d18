package compose

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpName(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"compose", "-p", "x", "-f", "a.yaml", "up", "-d"}, want: "up"},
		{args: []string{"compose", "--project-name", "x", "down"}, want: "down"},
		{args: []string{"port", "abc", "80/tcp"}, want: "port"},
		{args: []string{"--debug"}, want: "docker"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, opName(tt.args), tt.args)
	}
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	r := ExecRunner{Binary: "sh"}
	ctx := context.Background()

	out, err := r.Run(ctx, Command{Args: []string{"-c", "echo $COSY_TEST_VAR"}, Env: []string{"COSY_TEST_VAR=hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = r.Run(ctx, Command{Args: []string{"-c", "echo broken >&2; exit 3"}})
	var composeErr *ComposeError
	require.True(t, errors.As(err, &composeErr))
	assert.Equal(t, "broken\n", composeErr.Stderr)
}
