package cmdutil

import (
	"errors"
	"fmt"

	"github.com/schmitthub/cosytest/internal/config"
	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/pkg/compose"
)

// PrintError writes err to ios.ErrOut. Compose errors get their details and
// next steps; a missing cosy.yaml gets a hint on creating one.
func PrintError(ios *iostreams.IOStreams, err error) {
	if err == nil || errors.Is(err, SilentError) {
		return
	}
	cs := ios.ColorScheme()

	var composeErr *compose.ComposeError
	if errors.As(err, &composeErr) {
		fmt.Fprint(ios.ErrOut, composeErr.FormatUserError())
		return
	}

	fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)

	if config.IsConfigNotFound(err) {
		PrintNextSteps(ios,
			"Create a "+config.ConfigFileName+" with at least 'project' and 'files'",
			"Or point cosy at one with --config PATH",
		)
	}
}

// PrintNextSteps prints a "Next Steps" section to ios.ErrOut.
func PrintNextSteps(ios *iostreams.IOStreams, steps ...string) {
	if len(steps) == 0 {
		return
	}
	fmt.Fprintln(ios.ErrOut, "\nNext Steps:")
	for i, step := range steps {
		fmt.Fprintf(ios.ErrOut, "  %d. %s\n", i+1, step)
	}
}

// PrintWarning prints a warning message to ios.ErrOut.
func PrintWarning(ios *iostreams.IOStreams, format string, args ...any) {
	cs := ios.ColorScheme()
	fmt.Fprintf(ios.ErrOut, "%s "+format+"\n", append([]any{cs.WarningIcon()}, args...)...)
}

// PrintSuccess prints a success message to ios.ErrOut.
func PrintSuccess(ios *iostreams.IOStreams, format string, args ...any) {
	cs := ios.ColorScheme()
	fmt.Fprintf(ios.ErrOut, "%s "+format+"\n", append([]any{cs.SuccessIcon()}, args...)...)
}
