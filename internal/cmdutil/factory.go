// Package cmdutil holds the pieces shared by every cosy command: the
// dependency Factory, error types and error printing.
package cmdutil

import (
	"context"

	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
)

// Factory provides shared dependencies for CLI commands.
// The struct defines what dependencies exist; internal/cmd/factory wires the
// real implementations. Tests construct &cmdutil.Factory{} directly.
type Factory struct {
	// Set from global flags before command execution.
	ConfigPath string
	Project    string
	Debug      bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	IOStreams *iostreams.IOStreams

	// Config loads cosy.yaml once.
	Config func() (*config.Config, error)

	// NewSetup builds an uncached compose setup for project name from Config,
	// connected to the Docker Engine API. The caller closes it.
	NewSetup func(ctx context.Context, name string) (*compose.Setup, error)

	// Setup is NewSetup for the project picked by --project or cosy.yaml.
	// The result is cached.
	Setup func(context.Context) (*compose.Setup, error)

	// CloseSetup releases the Setup's lock and API connection, if one was
	// created.
	CloseSetup func()
}
