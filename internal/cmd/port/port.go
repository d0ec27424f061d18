package port

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
)

// PortOptions holds options for the port command.
type PortOptions struct {
	IOStreams *iostreams.IOStreams
	Setup     func(context.Context) (*compose.Setup, error)

	Service string
	Port    string
}

// NewCmdPort creates the port command.
func NewCmdPort(f *cmdutil.Factory, runF func(context.Context, *PortOptions) error) *cobra.Command {
	opts := &PortOptions{
		IOStreams: f.IOStreams,
		Setup:     f.Setup,
	}

	cmd := &cobra.Command{
		Use:   "port SERVICE PORT[/PROTO]",
		Short: "Print the host port mapped to a service port",
		Long: `Prints the host port published for PORT by every container of SERVICE, one
per line. The protocol defaults to tcp.`,
		Example: `  # Where is postgres listening?
  cosy port db 5432

  # A UDP port
  cosy port dns 53/udp`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Service = args[0]
			opts.Port = args[1]
			if _, err := compose.ParsePort(opts.Port); err != nil {
				return cmdutil.FlagErrorf("%w", err)
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return portRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func portRun(ctx context.Context, opts *PortOptions) error {
	setup, err := opts.Setup(ctx)
	if err != nil {
		return err
	}

	ports, err := setup.ServiceMappedPortSpec(ctx, opts.Service, opts.Port)
	if err != nil {
		return err
	}
	for _, p := range ports {
		fmt.Fprintln(opts.IOStreams.Out, p)
	}
	return nil
}
