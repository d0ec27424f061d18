package lifecycle

import (
	"context"
	"time"
)

// Environment is a named, already-configured multi-service container
// environment. *compose.Setup is the production implementation.
type Environment interface {
	// Up brings every declared service to a running (and, where a health
	// check exists, healthy) state within timeout. It reports success.
	Up(ctx context.Context, timeout time.Duration) bool

	// Down stops and removes every container of the environment.
	// It reports whether removal succeeded.
	Down(ctx context.Context) bool

	// DumpLogs archives the current logs of every container to dir/fileName.
	DumpLogs(ctx context.Context, fileName, dir string) error

	// SetupName identifies the environment in diagnostics.
	SetupName() string
}

// Scope is the capability set every framework adapter drives.
// *Coordinator implements it.
type Scope interface {
	Bootstrap(ctx context.Context) error
	MarkFailed()
	TearDown(ctx context.Context) error
}

var _ Scope = (*Coordinator)(nil)
