package compose_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moby/moby/client"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cosytest/pkg/compose"
	"github.com/schmitthub/cosytest/pkg/compose/composetest"
)

func newSetup(t *testing.T, name string, runner compose.Runner, api compose.APIClient, opts ...compose.Option) *compose.Setup {
	t.Helper()
	base := []compose.Option{
		compose.WithRunner(runner),
		compose.WithLogger(zerolog.Nop()),
		compose.WithLockDir(t.TempDir()),
		compose.WithPollInterval(5 * time.Millisecond),
	}
	if api != nil {
		base = append(base, compose.WithAPIClient(api))
	}
	return compose.New(name, []string{"compose.yaml", "compose.ci.yaml"}, "/work", map[string]string{"TAG": "1.2", "DB": "pg"}, append(base, opts...)...)
}

func TestSetup_UpDownCommands(t *testing.T) {
	runner := &composetest.FakeRunner{}
	s := newSetup(t, "orders", runner, nil, compose.WithUpArgs("--build", "--wait"))
	ctx := context.Background()

	require.True(t, s.Up(ctx, time.Minute))
	require.True(t, s.Down(ctx))

	assert.Equal(t, []string{
		"compose -p orders -f compose.yaml -f compose.ci.yaml up -d --build --wait",
		"compose -p orders -f compose.yaml -f compose.ci.yaml down --volumes --remove-orphans",
	}, runner.Invocations())

	for _, c := range runner.Commands {
		assert.Equal(t, "/work", c.Dir)
		assert.Equal(t, []string{"DB=pg", "TAG=1.2"}, c.Env)
	}
}

func TestSetup_UpFailsWhenComposeFails(t *testing.T) {
	runner := &composetest.FakeRunner{
		RunFn: func(_ context.Context, cmd compose.Command) ([]byte, error) {
			if composetest.HasSubcommand(cmd.Args, "up") {
				return nil, errors.New("exit status 1")
			}
			return nil, nil
		},
	}
	s := newSetup(t, "orders", runner, nil)

	assert.False(t, s.Up(context.Background(), time.Minute))
	assert.True(t, s.Down(context.Background()))
	assert.Equal(t, []string{"up", "down"}, runner.Subcommands())
}

func TestSetup_DownFails(t *testing.T) {
	runner := &composetest.FakeRunner{
		RunFn: func(_ context.Context, cmd compose.Command) ([]byte, error) {
			if composetest.HasSubcommand(cmd.Args, "down") {
				return nil, errors.New("exit status 1")
			}
			return nil, nil
		},
	}
	s := newSetup(t, "orders", runner, nil)

	require.True(t, s.Up(context.Background(), time.Minute))
	assert.False(t, s.Down(context.Background()))
}

func TestSetup_DownDeadline(t *testing.T) {
	tests := []struct {
		name         string
		opts         []compose.Option
		wantDeadline bool
	}{
		{name: "caller context only"},
		{name: "with down timeout", opts: []compose.Option{compose.WithDownTimeout(time.Minute)}, wantDeadline: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hasDeadline bool
			runner := &composetest.FakeRunner{
				RunFn: func(ctx context.Context, cmd compose.Command) ([]byte, error) {
					if composetest.HasSubcommand(cmd.Args, "down") {
						_, hasDeadline = ctx.Deadline()
					}
					return nil, nil
				},
			}
			s := newSetup(t, "orders", runner, nil, tt.opts...)

			require.True(t, s.Down(context.Background()))
			assert.Equal(t, tt.wantDeadline, hasDeadline)
		})
	}
}

func TestSetup_UpWaitsForHealth(t *testing.T) {
	api := &composetest.FakeAPIClient{}
	api.SetupContainers("orders",
		composetest.Container{ID: "db1", Name: "orders-db-1", Service: "db", Health: "starting"},
		composetest.Container{ID: "app1", Name: "orders-app-1", Service: "app"},
		composetest.Container{ID: "init1", Name: "orders-init-1", Service: "init", State: "exited"},
	)
	base := api.ContainerInspectFn
	polls := 0
	api.ContainerInspectFn = func(ctx context.Context, id string, opts client.ContainerInspectOptions) (client.ContainerInspectResult, error) {
		res, err := base(ctx, id, opts)
		if id == "db1" {
			polls++
			if polls >= 3 {
				res.Container.State.Health.Status = "healthy"
			}
		}
		return res, err
	}
	s := newSetup(t, "orders", &composetest.FakeRunner{}, api)

	require.True(t, s.Up(context.Background(), time.Minute))
	assert.GreaterOrEqual(t, polls, 3)
}

func TestSetup_UpTimesOutWhenUnhealthy(t *testing.T) {
	api := &composetest.FakeAPIClient{}
	api.SetupContainers("orders",
		composetest.Container{ID: "db1", Name: "orders-db-1", Service: "db", Health: "unhealthy"},
	)
	s := newSetup(t, "orders", &composetest.FakeRunner{}, api)

	assert.False(t, s.Up(context.Background(), 50*time.Millisecond))
}

func TestSetup_UpFailsFastOnCrashedContainer(t *testing.T) {
	api := &composetest.FakeAPIClient{}
	api.SetupContainers("orders",
		composetest.Container{ID: "app1", Name: "orders-app-1", Service: "app", State: "exited", ExitCode: 2},
	)
	s := newSetup(t, "orders", &composetest.FakeRunner{}, api)

	start := time.Now()
	assert.False(t, s.Up(context.Background(), time.Minute))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestSetup_ProjectLock(t *testing.T) {
	lockDir := t.TempDir()
	ctx := context.Background()

	r1 := &composetest.FakeRunner{}
	first := newSetup(t, "shared", r1, nil, compose.WithLockDir(lockDir))
	r2 := &composetest.FakeRunner{}
	second := newSetup(t, "shared", r2, nil, compose.WithLockDir(lockDir))

	require.True(t, first.Up(ctx, time.Minute))
	assert.Equal(t, first.LockPath(), second.LockPath())

	// The second run cannot lock and must not tear down the first run's project.
	assert.False(t, second.Up(ctx, 150*time.Millisecond))
	assert.True(t, second.Down(ctx))
	assert.Empty(t, r2.Commands)

	require.True(t, first.Down(ctx))

	third := newSetup(t, "shared", &composetest.FakeRunner{}, nil, compose.WithLockDir(lockDir))
	require.True(t, third.Up(ctx, time.Minute))
	require.True(t, third.Down(ctx))
}

func TestSetup_Accessors(t *testing.T) {
	s := newSetup(t, "orders", &composetest.FakeRunner{}, nil)

	assert.Equal(t, "orders", s.SetupName())
	assert.Equal(t, []string{"compose.yaml", "compose.ci.yaml"}, s.Files())
	assert.Equal(t, "/work", s.WorkDir())

	env := s.Env()
	env["TAG"] = "changed"
	assert.Equal(t, "1.2", s.Env()["TAG"])
}

func TestSetup_Close(t *testing.T) {
	api := &composetest.FakeAPIClient{}
	api.SetupContainers("orders")
	s := newSetup(t, "orders", &composetest.FakeRunner{}, api)

	require.True(t, s.Up(context.Background(), time.Minute))
	require.NoError(t, s.Close())
	assert.Equal(t, 1, api.CallCount("Close"))
}
