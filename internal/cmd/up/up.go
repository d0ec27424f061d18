package up

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

// UpOptions holds options for the up command.
type UpOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Setup     func(context.Context) (*compose.Setup, error)

	Timeout time.Duration
}

// NewCmdUp creates the up command.
func NewCmdUp(f *cmdutil.Factory, runF func(context.Context, *UpOptions) error) *cobra.Command {
	opts := &UpOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Setup:     f.Setup,
	}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start the test environment",
		Long: `Starts every service in the compose project and waits until containers with
a health check report healthy.

If startup fails the containers are removed again, exactly as a test run would.`,
		Example: `  # Start the environment described by ./cosy.yaml
  cosy up

  # Allow ten minutes for slow image pulls
  cosy up --timeout 10m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Timeout < 0 {
				return cmdutil.FlagErrorf("--timeout must not be negative")
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return upRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().DurationVarP(&opts.Timeout, "timeout", "t", 0, "Startup timeout (default from cosy.yaml)")

	return cmd
}

func upRun(ctx context.Context, opts *UpOptions) error {
	ios := opts.IOStreams

	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	setup, err := opts.Setup(ctx)
	if err != nil {
		return err
	}

	var extra []lifecycle.Option
	if opts.Timeout > 0 {
		extra = append(extra, lifecycle.WithStartupTimeout(opts.Timeout))
	}
	coordinator := cfg.Coordinator(setup, extra...)

	if err := coordinator.Bootstrap(ctx); err != nil {
		return err
	}

	containers, err := setup.Containers(ctx)
	if err != nil {
		return err
	}
	cmdutil.PrintSuccess(ios, "%s is up (%d containers)", setup.SetupName(), len(containers))
	return nil
}
