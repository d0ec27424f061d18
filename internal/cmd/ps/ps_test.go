package ps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/moby/moby/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cosytest/internal/cmd/cmdtest"
	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/iostreams/iostreamstest"
	"github.com/schmitthub/cosytest/pkg/compose/composetest"
)

func fixtures() []composetest.Container {
	return []composetest.Container{
		{ID: "db1", Name: "orders-db-1", Service: "db", Health: "healthy"},
		{ID: "api1", Name: "orders-api-1", Service: "api"},
		{ID: "job1", Name: "orders-job-1", Service: "job", State: "exited"},
	}
}

func TestNewCmdPs(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantQuiet   bool
		wantService string
		wantErr     bool
	}{
		{name: "no flags"},
		{name: "quiet", input: "-q", wantQuiet: true},
		{name: "service", input: "db", wantService: "db"},
		{name: "too many args", input: "db api", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := iostreamstest.New()
			f := &cmdutil.Factory{IOStreams: tio.IOStreams}

			var gotOpts *PsOptions
			cmd := NewCmdPs(f, func(_ context.Context, opts *PsOptions) error {
				gotOpts = opts
				return nil
			})

			err := cmdtest.Execute(t, cmd, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuiet, gotOpts.Quiet)
			assert.Equal(t, tt.wantService, gotOpts.Service)
		})
	}
}

func TestPsRun_Table(t *testing.T) {
	env := cmdtest.NewFactory(t, fixtures()...)

	require.NoError(t, cmdtest.Execute(t, NewCmdPs(env.Factory, nil), ""))

	lines := strings.Split(strings.TrimSpace(env.IO.OutBuf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"NAME", "SERVICE", "STATE", "HEALTH"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"orders-api-1", "api", "running", "none"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"orders-db-1", "db", "running", "healthy"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"orders-job-1", "job", "exited", "-"}, strings.Fields(lines[3]))
}

func TestPsRun_QuietService(t *testing.T) {
	env := cmdtest.NewFactory(t, fixtures()...)

	require.NoError(t, cmdtest.Execute(t, NewCmdPs(env.Factory, nil), "-q db"))
	assert.Equal(t, "db1\n", env.IO.OutBuf.String())
}

func TestPsRun_Empty(t *testing.T) {
	env := cmdtest.NewFactory(t)

	require.NoError(t, cmdtest.Execute(t, NewCmdPs(env.Factory, nil), ""))
	assert.Empty(t, env.IO.OutBuf.String())
	assert.Contains(t, env.IO.ErrBuf.String(), "No containers found for project orders.")
}

func TestPsRun_ListError(t *testing.T) {
	env := cmdtest.NewFactory(t)
	env.API.ContainerListFn = func(context.Context, client.ContainerListOptions) (client.ContainerListResult, error) {
		return client.ContainerListResult{}, errors.New("daemon gone")
	}

	err := cmdtest.Execute(t, NewCmdPs(env.Factory, nil), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon gone")
}
