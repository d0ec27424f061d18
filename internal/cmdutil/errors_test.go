package cmdutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams/iostreamstest"
	"github.com/schmitthub/cosytest/pkg/compose"
)

func TestFlagErrorf(t *testing.T) {
	err := FlagErrorf("unknown flag: %s", "--foo")
	assert.Equal(t, "unknown flag: --foo", err.Error())

	var flagErr *FlagError
	require.True(t, errors.As(err, &flagErr))
	assert.Equal(t, "unknown flag: --foo", flagErr.Error())
}

func TestFlagErrorf_Wraps(t *testing.T) {
	inner := fmt.Errorf("bad value")
	err := FlagErrorf("%w", inner)
	assert.Equal(t, "bad value", err.Error())

	var flagErr *FlagError
	require.True(t, errors.As(err, &flagErr))
	assert.True(t, errors.Is(err, inner))
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		wantMessage string
		wantProcess int
	}{
		{name: "exit status", code: 3, wantMessage: "command exited with status 3", wantProcess: 3},
		{name: "killed by signal", code: -1, wantMessage: "command was killed by a signal", wantProcess: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("running tests: %w", &ExitError{Code: tt.code})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tt.wantMessage, exitErr.Error())
			assert.Equal(t, tt.wantProcess, exitErr.ProcessCode())
		})
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    []string
		wantNot []string
	}{
		{
			name: "plain",
			err:  errors.New("boom"),
			want: []string{"[error] boom"},
		},
		{
			name: "compose error",
			err: fmt.Errorf("up: %w", &compose.ComposeError{
				Op:        "up",
				Message:   "docker compose up failed",
				Err:       errors.New("exit status 1"),
				NextSteps: []string{"Check the daemon"},
			}),
			want: []string{"Error: docker compose up failed", "Details: exit status 1", "1. Check the daemon"},
		},
		{
			name: "missing config",
			err:  &config.ConfigNotFoundError{Path: "/work/cosy.yaml"},
			want: []string{"configuration file not found: /work/cosy.yaml", "Next Steps:", "--config PATH"},
		},
		{
			name:    "silent",
			err:     SilentError,
			wantNot: []string{"already reported"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := iostreamstest.New()
			PrintError(tio.IOStreams, tt.err)
			for _, w := range tt.want {
				assert.Contains(t, tio.ErrBuf.String(), w)
			}
			for _, w := range tt.wantNot {
				assert.NotContains(t, tio.ErrBuf.String(), w)
			}
		})
	}
}

func TestPrintWarningAndSuccess(t *testing.T) {
	tio := iostreamstest.New()
	PrintWarning(tio.IOStreams, "kept %d containers", 2)
	PrintSuccess(tio.IOStreams, "removed %s", "orders")

	assert.Equal(t, "[warn] kept 2 containers\n[ok] removed orders\n", tio.ErrBuf.String())
}
