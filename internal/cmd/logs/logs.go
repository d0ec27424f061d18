package logs

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
)

// LogsOptions holds options for the logs command.
type LogsOptions struct {
	IOStreams *iostreams.IOStreams
	Setup     func(context.Context) (*compose.Setup, error)

	Services []string
}

// NewCmdLogs creates the logs command.
func NewCmdLogs(f *cmdutil.Factory, runF func(context.Context, *LogsOptions) error) *cobra.Command {
	opts := &LogsOptions{
		IOStreams: f.IOStreams,
		Setup:     f.Setup,
	}

	cmd := &cobra.Command{
		Use:   "logs [SERVICE...]",
		Short: "Print service logs",
		Long: `Prints the logs of the given services, or of every service in the compose
files when none are named. Each service is preceded by a header when more than
one is printed.`,
		Example: `  # Logs of the api service
  cosy logs api

  # Everything
  cosy logs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Services = args
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return logsRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func logsRun(ctx context.Context, opts *LogsOptions) error {
	ios := opts.IOStreams

	setup, err := opts.Setup(ctx)
	if err != nil {
		return err
	}

	services := opts.Services
	if len(services) == 0 {
		if services, err = setup.Services(ctx); err != nil {
			return err
		}
	}

	cs := ios.ColorScheme()
	for i, service := range services {
		out, err := setup.ServiceLogs(ctx, service)
		if err != nil {
			return err
		}
		if len(services) > 1 {
			if i > 0 {
				fmt.Fprintln(ios.Out)
			}
			fmt.Fprintln(ios.Out, cs.Boldf("==> %s <==", service))
		}
		fmt.Fprint(ios.Out, out)
	}
	return nil
}
