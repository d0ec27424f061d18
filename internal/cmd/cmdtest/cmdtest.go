// Package cmdtest provides shared helpers for cosy command tests: a Factory
// wired to a compose.Setup backed by composetest fakes, and argv execution.
package cmdtest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams/iostreamstest"
	"github.com/schmitthub/cosytest/pkg/compose"
	"github.com/schmitthub/cosytest/pkg/compose/composetest"
)

// Project is the compose project name used by NewFactory.
const Project = "orders"

// Env bundles a test Factory with the fakes behind it.
type Env struct {
	Factory *cmdutil.Factory
	IO      *iostreamstest.TestIOStreams
	Config  *config.Config
	Runner  *composetest.FakeRunner
	API     *composetest.FakeAPIClient
	Setup   *compose.Setup

	// SetupNames records the project names passed to Factory.NewSetup.
	SetupNames []string
}

// NewFactory returns a Factory whose Setup drives runner and api. The
// config has project "orders" and a one minute startup timeout. Callers may
// edit env.Config before running a command.
func NewFactory(t *testing.T, containers ...composetest.Container) *Env {
	t.Helper()
	tio := iostreamstest.New()

	runner := &composetest.FakeRunner{}
	api := &composetest.FakeAPIClient{}
	api.SetupContainers(Project, containers...)

	cfg := config.DefaultConfig()
	cfg.Project = Project
	cfg.StartupTimeout = time.Minute

	setup := compose.New(Project, cfg.Files, "/work", nil,
		compose.WithRunner(runner),
		compose.WithAPIClient(api),
		compose.WithLogger(zerolog.Nop()),
		compose.WithLockDir(t.TempDir()),
		compose.WithPollInterval(5*time.Millisecond),
	)

	e := &Env{
		IO:     tio,
		Config: cfg,
		Runner: runner,
		API:    api,
		Setup:  setup,
	}
	e.Factory = &cmdutil.Factory{
		IOStreams: tio.IOStreams,
		Config: func() (*config.Config, error) {
			return e.Config, nil
		},
		NewSetup: func(_ context.Context, name string) (*compose.Setup, error) {
			e.SetupNames = append(e.SetupNames, name)
			return e.Setup, nil
		},
		Setup: func(context.Context) (*compose.Setup, error) {
			return e.Setup, nil
		},
		CloseSetup: func() {},
	}
	return e
}

// Execute runs cmd with the shell-split args and returns its error.
func Execute(t *testing.T, cmd *cobra.Command, args string) error {
	t.Helper()
	argv, err := shlex.Split(args)
	if err != nil {
		t.Fatalf("splitting %q: %v", args, err)
	}
	cmd.SetArgs(argv)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	_, err = cmd.ExecuteC()
	return err
}
