package compose

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// Command is one invocation of the docker CLI.
type Command struct {
	Args []string // arguments after "docker"
	Dir  string   // working directory, empty for the current one
	Env  []string // KEY=VALUE pairs appended to the process environment
}

// Runner executes docker CLI commands and returns their stdout.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs the docker binary found on PATH.
type ExecRunner struct {
	// Binary overrides the executable name. Defaults to "docker".
	Binary string
}

func (r ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "docker"
	}

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errCommandFailed(opName(c.Args), c.Args, stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// opName picks the subcommand name out of a docker argument list.
func opName(args []string) string {
	skip := false
	for _, a := range args {
		switch {
		case skip:
			skip = false
		case a == "compose":
		case a == "-p" || a == "-f" || a == "--project-name" || a == "--file":
			skip = true
		case len(a) > 0 && a[0] == '-':
		default:
			return a
		}
	}
	return "docker"
}
