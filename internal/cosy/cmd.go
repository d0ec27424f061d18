// Package cosy wires the cosy CLI entry point.
package cosy

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cosytest/internal/cmd/factory"
	"github.com/schmitthub/cosytest/internal/cmd/root"
	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/internal/logger"
)

// Build-time variables injected via ldflags
var (
	Version = "dev"
	Commit  = "none"
)

const (
	exitOk    = 0
	exitError = 1
	exitUsage = 2
)

// Main is the entry point for the cosy CLI.
// It initializes the Factory, creates the root command, and executes it.
func Main() int {
	// Ensure logs are flushed on exit
	defer func() { _ = logger.CloseFileWriter() }()

	f := factory.New(Version, Commit)
	defer f.CloseSetup()

	rootCmd := root.NewCmdRoot(f)

	cmd, err := rootCmd.ExecuteC()
	return exitCode(f.IOStreams, cmd, err)
}

// exitCode prints err the way its type asks for and maps it to a process
// exit status.
func exitCode(ios *iostreams.IOStreams, cmd *cobra.Command, err error) int {
	if err == nil {
		return exitOk
	}

	var exitErr *cmdutil.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ProcessCode()
	}

	if errors.Is(err, cmdutil.SilentError) {
		return exitError
	}

	var flagErr *cmdutil.FlagError
	if errors.As(err, &flagErr) {
		fmt.Fprintln(ios.ErrOut, err)
		if cmd != nil {
			fmt.Fprintln(ios.ErrOut)
			fmt.Fprint(ios.ErrOut, cmd.UsageString())
		}
		return exitUsage
	}

	cmdutil.PrintError(ios, err)
	return exitError
}
