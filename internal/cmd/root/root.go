package root

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmd/down"
	"github.com/schmitthub/cosytest/internal/cmd/dump"
	"github.com/schmitthub/cosytest/internal/cmd/logs"
	"github.com/schmitthub/cosytest/internal/cmd/port"
	"github.com/schmitthub/cosytest/internal/cmd/ps"
	"github.com/schmitthub/cosytest/internal/cmd/run"
	"github.com/schmitthub/cosytest/internal/cmd/up"
	versioncmd "github.com/schmitthub/cosytest/internal/cmd/version"
	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/logger"
)

// NewCmdRoot creates the root command for the cosy CLI.
func NewCmdRoot(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cosy",
		Short: "Manage docker compose environments for integration tests",
		Long: `Cosy drives the docker compose environment described by cosy.yaml the same
way the Go test helpers do: start it, wait for health checks, dump logs when
something failed and remove the containers unless told to keep them.

Quick start:
  cosy up                     # Start the environment and wait until healthy
  cosy ps                     # List its containers
  cosy down                   # Remove it
  cosy run -- go test ./...   # All of the above around a command`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initializeLogger(f)

			logger.Debug().
				Str("version", f.Version).
				Str("config", f.ConfigPath).
				Bool("debug", f.Debug).
				Msg("cosy starting")

			return nil
		},
		Version: f.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to cosy.yaml or its directory (default: current directory)")
	cmd.PersistentFlags().StringVarP(&f.Project, "project", "p", "", "Compose project name (overrides cosy.yaml)")
	cmd.PersistentFlags().BoolVarP(&f.Debug, "debug", "D", false, "Enable debug logging")

	cmd.SetVersionTemplate(versioncmd.Format(f.Version, f.Commit))
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.FlagErrorf("%w", err)
	})

	cmd.AddCommand(up.NewCmdUp(f, nil))
	cmd.AddCommand(down.NewCmdDown(f, nil))
	cmd.AddCommand(ps.NewCmdPs(f, nil))
	cmd.AddCommand(port.NewCmdPort(f, nil))
	cmd.AddCommand(logs.NewCmdLogs(f, nil))
	cmd.AddCommand(dump.NewCmdDump(f, nil))
	cmd.AddCommand(run.NewCmdRun(f, nil))
	cmd.AddCommand(versioncmd.NewCmdVersion(f))

	return cmd
}

// initializeLogger sets up the logger with file logging if possible.
// Falls back to console-only logging on any errors.
func initializeLogger(f *cmdutil.Factory) {
	if f.Config == nil {
		logger.Init(f.Debug)
		return
	}

	// A missing or broken cosy.yaml is reported by the command itself.
	cfg, err := f.Config()
	if err != nil {
		logger.Init(f.Debug)
		return
	}

	logsDir := cfg.Logging.Dir
	if logsDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			logger.Init(f.Debug)
			logger.Warn().Err(err).Msg("file logging unavailable: failed to get logs directory")
			return
		}
		logsDir = filepath.Join(cacheDir, "cosy", "logs")
	}

	if err := logger.InitWithFile(f.Debug, logsDir, cfg.Logging.LoggerConfig()); err != nil {
		logger.Init(f.Debug)
		logger.Warn().Err(err).Msg("file logging unavailable: failed to initialize file writer")
	}

	if !f.Debug && cfg.Logging.Level != "" {
		if err := logger.SetLevel(cfg.Logging.Level); err != nil {
			logger.Warn().Err(err).Str("level", cfg.Logging.Level).Msg("ignoring logging.level")
		}
	}
}
