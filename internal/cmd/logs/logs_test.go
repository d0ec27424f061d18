package logs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cosytest/internal/cmd/cmdtest"
	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/iostreams/iostreamstest"
	"github.com/schmitthub/cosytest/pkg/compose"
	"github.com/schmitthub/cosytest/pkg/compose/composetest"
)

func logsRunner() *composetest.FakeRunner {
	return &composetest.FakeRunner{
		RunFn: func(_ context.Context, cmd compose.Command) ([]byte, error) {
			switch {
			case composetest.HasSubcommand(cmd.Args, "config"):
				return []byte("db\napi\n"), nil
			case composetest.HasSubcommand(cmd.Args, "logs"):
				switch cmd.Args[len(cmd.Args)-1] {
				case "api":
					return []byte("api ready\n"), nil
				case "db":
					return []byte("db ready\n"), nil
				}
			}
			return nil, errors.New("unexpected command")
		},
	}
}

func TestNewCmdLogs(t *testing.T) {
	tio := iostreamstest.New()
	f := &cmdutil.Factory{IOStreams: tio.IOStreams}

	var gotOpts *LogsOptions
	cmd := NewCmdLogs(f, func(_ context.Context, opts *LogsOptions) error {
		gotOpts = opts
		return nil
	})

	require.NoError(t, cmdtest.Execute(t, cmd, "api db"))
	assert.Equal(t, []string{"api", "db"}, gotOpts.Services)
}

func TestLogsRun_SingleService(t *testing.T) {
	env := cmdtest.NewFactory(t)
	env.Runner.RunFn = logsRunner().RunFn

	require.NoError(t, cmdtest.Execute(t, NewCmdLogs(env.Factory, nil), "api"))
	assert.Equal(t, "api ready\n", env.IO.OutBuf.String())
}

func TestLogsRun_AllServices(t *testing.T) {
	env := cmdtest.NewFactory(t)
	env.Runner.RunFn = logsRunner().RunFn

	require.NoError(t, cmdtest.Execute(t, NewCmdLogs(env.Factory, nil), ""))
	assert.Equal(t, "==> api <==\napi ready\n\n==> db <==\ndb ready\n", env.IO.OutBuf.String())
}

func TestLogsRun_Error(t *testing.T) {
	env := cmdtest.NewFactory(t)
	env.Runner.RunFn = logsRunner().RunFn

	err := cmdtest.Execute(t, NewCmdLogs(env.Factory, nil), "missing")
	assert.Error(t, err)
}
