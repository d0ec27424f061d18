// Package composetest provides test doubles for compose.Setup collaborators.
package composetest

import (
	"context"
	"strings"
	"sync"

	"github.com/schmitthub/cosytest/pkg/compose"
)

// FakeRunner is a compose.Runner that records every command. RunFn decides
// the result; when nil every command succeeds with empty output.
type FakeRunner struct {
	RunFn func(ctx context.Context, cmd compose.Command) ([]byte, error)

	mu       sync.Mutex
	Commands []compose.Command
}

func (f *FakeRunner) Run(ctx context.Context, cmd compose.Command) ([]byte, error) {
	f.mu.Lock()
	f.Commands = append(f.Commands, cmd)
	f.mu.Unlock()
	if f.RunFn == nil {
		return nil, nil
	}
	return f.RunFn(ctx, cmd)
}

// Invocations returns each recorded command's arguments joined by spaces.
func (f *FakeRunner) Invocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Commands))
	for _, c := range f.Commands {
		out = append(out, strings.Join(c.Args, " "))
	}
	return out
}

// Subcommands returns the subcommand of each recorded compose invocation
// ("up", "down", ...), skipping plain docker commands.
func (f *FakeRunner) Subcommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.Commands {
		if sub := subcommand(c.Args); sub != "" {
			out = append(out, sub)
		}
	}
	return out
}

// Reset clears the recorded commands.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	f.Commands = nil
	f.mu.Unlock()
}

// HasSubcommand reports whether args is a compose invocation of sub.
func HasSubcommand(args []string, sub string) bool {
	return subcommand(args) == sub
}

func subcommand(args []string) string {
	if len(args) == 0 || args[0] != "compose" {
		return ""
	}
	for i := 1; i < len(args); i++ {
		if args[i] == "-p" || args[i] == "-f" {
			i++
			continue
		}
		return args[i]
	}
	return ""
}
