package factory

import (
	"context"
	"os"
	"sync"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/internal/logger"
	"github.com/schmitthub/cosytest/pkg/compose"
)

// New creates a fully-wired Factory with lazy-initialized dependency closures.
// Called exactly once at the CLI entry point (internal/cosy/cmd.go).
// Tests should NOT import this package; construct &cmdutil.Factory{} directly.
func New(version, commit string) *cmdutil.Factory {
	ios := iostreams.NewIOStreams()
	ios.Logger = &logger.Log

	// Respect NO_COLOR, and never color piped output.
	if !ios.IsOutputTTY() || os.Getenv("NO_COLOR") != "" {
		ios.SetColorEnabled(false)
	}

	f := &cmdutil.Factory{
		Version:   version,
		Commit:    commit,
		IOStreams: ios,
	}

	// Config
	var (
		configOnce sync.Once
		configData *config.Config
		configErr  error
	)
	f.Config = func() (*config.Config, error) {
		configOnce.Do(func() {
			configData, configErr = config.NewLoader(f.ConfigPath).Load()
		})
		return configData, configErr
	}

	f.NewSetup = func(ctx context.Context, name string) (*compose.Setup, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		api, err := compose.NewAPIClient(ctx)
		if err != nil {
			return nil, err
		}
		s, err := cfg.Setup(name, compose.WithAPIClient(api))
		if err != nil {
			_ = api.Close()
			return nil, err
		}
		return s, nil
	}

	// Setup
	var (
		setupMu sync.Mutex
		setup   *compose.Setup
	)
	f.Setup = func(ctx context.Context) (*compose.Setup, error) {
		setupMu.Lock()
		defer setupMu.Unlock()
		if setup != nil {
			return setup, nil
		}

		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		name, err := projectName(f, cfg)
		if err != nil {
			return nil, err
		}
		s, err := f.NewSetup(ctx, name)
		if err != nil {
			return nil, err
		}
		logger.SetContext(s.SetupName(), "cli")
		setup = s
		return setup, nil
	}
	f.CloseSetup = func() {
		setupMu.Lock()
		defer setupMu.Unlock()
		if setup == nil {
			return
		}
		if err := setup.Close(); err != nil {
			ios.Logger.Debug().Err(err).Msg("failed to close setup")
		}
		setup = nil
	}

	return f
}

// projectName picks the project the CLI operates on. A generated unique name
// would never match a retained environment, so it needs an explicit override.
func projectName(f *cmdutil.Factory, cfg *config.Config) (string, error) {
	if f.Project != "" {
		return compose.SanitizeProjectName(f.Project), nil
	}
	if cfg.UniqueProject {
		return "", cmdutil.FlagErrorf("%s sets unique_project; pass --project NAME to pick the environment", cfg.Path())
	}
	return cfg.Project, nil
}
