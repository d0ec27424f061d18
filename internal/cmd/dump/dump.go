package dump

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
)

// DumpOptions holds options for the dump command.
type DumpOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Setup     func(context.Context) (*compose.Setup, error)

	Dir  string
	File string
}

// NewCmdDump creates the dump command.
func NewCmdDump(f *cmdutil.Factory, runF func(context.Context, *DumpOptions) error) *cobra.Command {
	opts := &DumpOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Setup:     f.Setup,
	}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Archive container logs",
		Long: `Writes the logs of every container in the project to a gzip-compressed tar
archive, one <service>/<container>.log entry per container.

Without flags the log_dump settings from cosy.yaml are used, falling back to
./<project>-logs.tar.gz.`,
		Example: `  # Archive next to cosy.yaml
  cosy dump

  # Archive into the CI artifacts directory
  cosy dump --dir "$CI_ARTIFACTS" --file orders.tar.gz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.File != "" && filepath.Base(opts.File) != opts.File {
				return cmdutil.FlagErrorf("--file must be a file name, use --dir for the directory")
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return dumpRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "Directory for the archive")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Archive file name")

	return cmd
}

func dumpRun(ctx context.Context, opts *DumpOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	setup, err := opts.Setup(ctx)
	if err != nil {
		return err
	}

	dir, file := opts.Dir, opts.File
	if dir == "" {
		dir = cfg.ResolvedLogDumpDir()
	}
	if dir == "" {
		dir = "."
	}
	if file == "" {
		file = cfg.LogDump.File
	}
	if file == "" {
		file = setup.SetupName() + "-logs.tar.gz"
	}

	ios := opts.IOStreams
	path := filepath.Join(dir, file)
	err = setup.DumpLogs(ctx, file, dir)

	var partial *compose.PartialDumpError
	if errors.As(err, &partial) {
		for _, skipped := range partial.Skipped {
			cmdutil.PrintWarning(ios, "skipped %v", skipped)
		}
		cmdutil.PrintWarning(ios, "logs written to %s without %d container(s)", path, len(partial.Skipped))
		return cmdutil.SilentError
	}
	if err != nil {
		return err
	}
	cmdutil.PrintSuccess(ios, "logs written to %s", path)
	return nil
}
