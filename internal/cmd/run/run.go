package run

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/internal/logger"
	"github.com/schmitthub/cosytest/internal/signals"
	"github.com/schmitthub/cosytest/pkg/compose"
	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

// ProjectEnvVar is exported to the command with the compose project name.
const ProjectEnvVar = "COSY_PROJECT"

// ExecFunc runs argv with the given extra environment and returns its exit code.
type ExecFunc func(ctx context.Context, ios *iostreams.IOStreams, argv []string, env []string) (int, error)

// WatchFunc calls onSignal for interrupts delivered while COMMAND runs, until
// stop is called.
type WatchFunc func(onSignal func(os.Signal)) (stop func())

// RunOptions holds options for the run command.
type RunOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	NewSetup  func(ctx context.Context, name string) (*compose.Setup, error)
	Project   func() string
	Exec      ExecFunc
	Watch     WatchFunc

	KeepOnSuccess bool
	KeepOnFailure bool
	Command       []string

	keepOnSuccessSet bool
	keepOnFailureSet bool
}

// NewCmdRun creates the run command.
func NewCmdRun(f *cmdutil.Factory, runF func(context.Context, *RunOptions) error) *cobra.Command {
	opts := &RunOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		NewSetup:  f.NewSetup,
		Project:   func() string { return f.Project },
		Exec:      execCommand,
		Watch:     func(onSignal func(os.Signal)) func() { return signals.Watch(onSignal) },
	}

	cmd := &cobra.Command{
		Use:   "run [flags] [--] COMMAND [ARG...]",
		Short: "Run a command against a fresh test environment",
		Long: `Starts the compose project, runs COMMAND, then tears the project down.

A non-zero exit status marks the run as failed: logs are dumped when
log_dump is configured, and containers are kept when keep_on_failure is set.
The project name is exported to COMMAND as ` + ProjectEnvVar + `.

With unique_project set every run gets its own project name, so concurrent
runs do not collide.`,
		Example: `  # Run the integration suite
  cosy run -- go test -tags integration ./...

  # Keep containers around when the suite fails
  cosy run --keep-on-failure -- make e2e`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = args
			opts.keepOnSuccessSet = cmd.Flags().Changed("keep-on-success")
			opts.keepOnFailureSet = cmd.Flags().Changed("keep-on-failure")
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return runRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&opts.KeepOnSuccess, "keep-on-success", false, "Keep containers when COMMAND succeeds (default from cosy.yaml)")
	cmd.Flags().BoolVar(&opts.KeepOnFailure, "keep-on-failure", false, "Keep containers when COMMAND fails (default from cosy.yaml)")

	return cmd
}

func runRun(ctx context.Context, opts *RunOptions) error {
	ios := opts.IOStreams

	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	name := opts.Project()
	if name == "" {
		name = cfg.ProjectName()
	} else {
		name = compose.SanitizeProjectName(name)
	}

	setup, err := opts.NewSetup(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if err := setup.Close(); err != nil {
			ios.Logger.Debug().Err(err).Msg("failed to close setup")
		}
	}()
	logger.SetContext(setup.SetupName(), "run")

	var extra []lifecycle.Option
	if opts.keepOnSuccessSet {
		extra = append(extra, lifecycle.WithKeepOnSuccess(opts.KeepOnSuccess))
	}
	if opts.keepOnFailureSet {
		extra = append(extra, lifecycle.WithKeepOnFailure(opts.KeepOnFailure))
	}
	coordinator := cfg.Coordinator(setup, extra...)

	if err := coordinator.Bootstrap(ctx); err != nil {
		return err
	}

	// The terminal delivers SIGINT to the child as well; cosy stays alive to
	// tear down and records the run as failed.
	stopWatch := opts.Watch(func(sig os.Signal) {
		ios.Logger.Warn().Str("signal", sig.String()).Msg("interrupted, marking run as failed")
		coordinator.MarkFailed()
	})
	code, execErr := opts.Exec(ctx, ios, opts.Command, []string{ProjectEnvVar + "=" + setup.SetupName()})
	stopWatch()

	if execErr != nil || code != 0 {
		coordinator.MarkFailed()
	}

	if err := coordinator.TearDown(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(execErr, err)
	}
	for _, w := range coordinator.Warnings() {
		cmdutil.PrintWarning(ios, "%v", w)
	}
	if coordinator.Policy().Keep(coordinator.Failed()) {
		cmdutil.PrintWarning(ios, "containers of %s were kept; remove them with: cosy down --project %s",
			setup.SetupName(), setup.SetupName())
	}

	if execErr != nil {
		return execErr
	}
	if code != 0 {
		return &cmdutil.ExitError{Code: code}
	}
	return nil
}

// execCommand runs argv attached to ios.
func execCommand(ctx context.Context, ios *iostreams.IOStreams, argv []string, env []string) (int, error) {
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdin = ios.In
	c.Stdout = ios.Out
	c.Stderr = ios.ErrOut
	c.Env = append(os.Environ(), env...)

	err := c.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}
