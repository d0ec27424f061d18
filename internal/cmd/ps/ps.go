package ps

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
)

// PsOptions holds options for the ps command.
type PsOptions struct {
	IOStreams *iostreams.IOStreams
	Setup     func(context.Context) (*compose.Setup, error)

	Quiet   bool
	Service string
}

// NewCmdPs creates the ps command.
func NewCmdPs(f *cmdutil.Factory, runF func(context.Context, *PsOptions) error) *cobra.Command {
	opts := &PsOptions{
		IOStreams: f.IOStreams,
		Setup:     f.Setup,
	}

	cmd := &cobra.Command{
		Use:     "ps [SERVICE]",
		Aliases: []string{"ls"},
		Short:   "List the environment's containers",
		Long:    `Lists the containers of the compose project with their service, state and health.`,
		Example: `  # List every container
  cosy ps

  # Only the database containers
  cosy ps db

  # Container IDs only
  cosy ps -q`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Service = args[0]
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return psRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Only display container IDs")

	return cmd
}

func psRun(ctx context.Context, opts *PsOptions) error {
	ios := opts.IOStreams

	setup, err := opts.Setup(ctx)
	if err != nil {
		return err
	}

	all, err := setup.Containers(ctx)
	if err != nil {
		return err
	}
	var containers []compose.ContainerInfo
	for _, c := range all {
		if opts.Service == "" || c.Service == opts.Service {
			containers = append(containers, c)
		}
	}

	if len(containers) == 0 {
		fmt.Fprintf(ios.ErrOut, "No containers found for project %s.\n", setup.SetupName())
		return nil
	}

	if opts.Quiet {
		for _, c := range containers {
			fmt.Fprintln(ios.Out, c.ID)
		}
		return nil
	}

	cs := ios.ColorScheme()
	tp := ios.NewTablePrinter("NAME", "SERVICE", "STATE", "HEALTH")
	for _, c := range containers {
		tp.AddRow(c.Name, c.Service, cs.State(c.State), cs.State(c.Health))
	}
	return tp.Render()
}
