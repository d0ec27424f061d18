package down

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

// DownOptions holds options for the down command.
type DownOptions struct {
	IOStreams *iostreams.IOStreams
	Setup     func(context.Context) (*compose.Setup, error)
}

// NewCmdDown creates the down command.
func NewCmdDown(f *cmdutil.Factory, runF func(context.Context, *DownOptions) error) *cobra.Command {
	opts := &DownOptions{
		IOStreams: f.IOStreams,
		Setup:     f.Setup,
	}

	cmd := &cobra.Command{
		Use:     "down",
		Aliases: []string{"rm"},
		Short:   "Remove the test environment",
		Long: `Stops and removes every container, network and volume of the compose project.

Use it to clean up an environment a test run kept with keep_on_failure or
keep_on_success. If a test binary currently owns the project, down waits for it.`,
		Example: `  # Remove the environment described by ./cosy.yaml
  cosy down

  # Remove a run that used unique_project
  cosy down --project orders-3f9a1c2b7d4e`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return downRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func downRun(ctx context.Context, opts *DownOptions) error {
	setup, err := opts.Setup(ctx)
	if err != nil {
		return err
	}

	if !setup.Down(ctx) {
		return &lifecycle.SetupError{Op: "teardown", Setup: setup.SetupName(), Err: lifecycle.ErrRemoveFailed}
	}
	cmdutil.PrintSuccess(opts.IOStreams, "%s removed", setup.SetupName())
	return nil
}
