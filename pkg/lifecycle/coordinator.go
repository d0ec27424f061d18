package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"

	"github.com/schmitthub/cosytest/internal/logger"
)

// DefaultStartupTimeout bounds bring-up when no timeout is configured.
const DefaultStartupTimeout = 5 * time.Minute

// State is the position of a Coordinator in its single scope.
type State int

const (
	StateNotStarted State = iota
	StateStarting
	StateRunning
	StateStopping
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Coordinator owns one Environment for exactly one test scope.
// Construct it with New or NewBuilder. The zero value and a nil
// *Coordinator are both valid no-op coordinators.
type Coordinator struct {
	env            Environment
	startupTimeout time.Duration
	policy         Policy
	dump           LogDumpTarget
	log            *zerolog.Logger

	// failed is written from failure hooks that may run on another goroutine.
	failed atomic.Bool

	mu       sync.Mutex
	state    State
	warnings []error
}

// New creates a Coordinator for env. env may be nil.
func New(env Environment, opts ...Option) *Coordinator {
	o := options{startupTimeout: DefaultStartupTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.startupTimeout <= 0 {
		o.startupTimeout = DefaultStartupTimeout
	}
	return &Coordinator{
		env:            env,
		startupTimeout: o.startupTimeout,
		policy:         o.policy,
		dump:           o.dump,
		log:            o.log,
	}
}

// Bootstrap brings the environment up. If bring-up fails, every started
// container is removed before a *SetupError is returned; callers must abort
// the scope.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	if !c.transition(StateStarting, StateNotStarted) {
		return ErrCoordinatorUsed
	}

	name := c.env.SetupName()
	log := c.logger().With().Str("setup", name).Logger()

	log.Info().Dur("timeout", c.startupTimeout).Msg("starting containers")
	start := time.Now()

	if !c.env.Up(ctx, c.startupTimeout) {
		log.Error().Msg("containers failed to start, removing them")
		cleanupErr := c.remove(ctx, log)
		c.setState(StateFailed)

		err := error(&SetupError{Op: "bootstrap", Setup: name, Err: ErrStartFailed})
		if cleanupErr != nil {
			return errors.Join(err, cleanupErr)
		}
		return err
	}

	c.setState(StateRunning)
	log.Info().
		Str("took", units.HumanDuration(time.Since(start))).
		Msg("containers started")
	return nil
}

// MarkFailed records that a test in the scope failed. It is idempotent and
// safe to call from any goroutine.
func (c *Coordinator) MarkFailed() {
	if c == nil {
		return
	}
	c.failed.Store(true)
}

// TearDown archives logs when a test failed and a dump target is set, then
// removes the containers unless the retention policy keeps them. A log dump
// failure is only recorded as a warning; a removal failure returns a
// *SetupError.
//
// After a failed Bootstrap the containers were already removed and TearDown
// returns nil.
func (c *Coordinator) TearDown(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	if !c.transition(StateStopping, StateNotStarted, StateRunning) {
		if c.State() == StateFailed {
			return nil
		}
		return ErrCoordinatorUsed
	}
	defer c.setState(StateDone)

	failed := c.failed.Load()
	log := c.logger().With().
		Str("setup", c.env.SetupName()).
		Bool("failed", failed).
		Logger()

	if c.dump.ShouldDump(failed) {
		if err := c.env.DumpLogs(ctx, c.dump.FileName, c.dump.Dir); err != nil {
			log.Warn().Err(err).
				Str("dir", c.dump.Dir).
				Str("file", c.dump.FileName).
				Msg("failed to dump logs")
			c.addWarning(err)
		} else {
			log.Info().
				Str("dir", c.dump.Dir).
				Str("file", c.dump.FileName).
				Msg("logs dumped")
		}
	}

	if c.policy.Keep(failed) {
		log.Info().Msg("keeping containers")
		return nil
	}
	return c.remove(ctx, log)
}

// remove asks the environment to stop and remove its containers.
func (c *Coordinator) remove(ctx context.Context, log zerolog.Logger) error {
	log.Info().Msg("removing containers")
	start := time.Now()
	if !c.env.Down(ctx) {
		return &SetupError{Op: "teardown", Setup: c.env.SetupName(), Err: ErrRemoveFailed}
	}
	log.Info().
		Str("took", units.HumanDuration(time.Since(start))).
		Msg("containers removed")
	return nil
}

// Failed reports whether MarkFailed has been called.
func (c *Coordinator) Failed() bool {
	if c == nil {
		return false
	}
	return c.failed.Load()
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	if c == nil {
		return StateNotStarted
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Policy returns the retention policy.
func (c *Coordinator) Policy() Policy {
	if c == nil {
		return Policy{}
	}
	return c.policy
}

// LogDump returns the log dump target.
func (c *Coordinator) LogDump() LogDumpTarget {
	if c == nil {
		return LogDumpTarget{}
	}
	return c.dump
}

// StartupTimeout returns the bring-up bound.
func (c *Coordinator) StartupTimeout() time.Duration {
	if c == nil {
		return DefaultStartupTimeout
	}
	return c.startupTimeout
}

// Environment returns the managed environment, or nil.
func (c *Coordinator) Environment() Environment {
	if c == nil {
		return nil
	}
	return c.env
}

// Warnings returns the non-fatal errors recorded during TearDown.
func (c *Coordinator) Warnings() []error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.warnings...)
}

func (c *Coordinator) disabled() bool {
	return c == nil || c.env == nil
}

func (c *Coordinator) logger() *zerolog.Logger {
	if c.log != nil {
		return c.log
	}
	return &logger.Log
}

// transition moves to next if the current state is one of from.
func (c *Coordinator) transition(next State, from ...State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range from {
		if c.state == s {
			c.state = next
			return true
		}
	}
	return false
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Coordinator) addWarning(err error) {
	c.mu.Lock()
	c.warnings = append(c.warnings, err)
	c.mu.Unlock()
}
