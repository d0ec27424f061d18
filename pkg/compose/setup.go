package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/schmitthub/cosytest/internal/logger"
	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

const (
	// DefaultPollInterval is how often container health is polled.
	DefaultPollInterval = 500 * time.Millisecond

	lockRetryDelay = 100 * time.Millisecond
)

// Setup is a named docker compose project: a set of compose files, a working
// directory and the environment passed to docker compose. It implements
// lifecycle.Environment.
type Setup struct {
	name    string
	files   []string
	workDir string
	env     map[string]string
	upArgs  []string

	runner       Runner
	api          APIClient
	log          *zerolog.Logger
	lockDir      string
	pollInterval time.Duration
	downTimeout  time.Duration

	mu   sync.Mutex
	lock *flock.Flock
	// lockDenied is set when Up could not lock the project. Another process
	// owns the containers, so Down must leave them alone.
	lockDenied bool
}

var _ lifecycle.Environment = (*Setup)(nil)

// Option configures a Setup.
type Option func(*Setup)

// WithRunner replaces the docker CLI runner.
func WithRunner(r Runner) Option {
	return func(s *Setup) { s.runner = r }
}

// WithAPIClient sets the Engine API client used for queries and log capture.
func WithAPIClient(c APIClient) Option {
	return func(s *Setup) { s.api = c }
}

// WithUpArgs appends extra arguments to "docker compose up -d".
func WithUpArgs(args ...string) Option {
	return func(s *Setup) { s.upArgs = append(s.upArgs, args...) }
}

// WithLogger routes Setup logs to l.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Setup) { s.log = &l }
}

// WithLockDir sets the directory holding project lock files.
// Defaults to os.TempDir().
func WithLockDir(dir string) Option {
	return func(s *Setup) { s.lockDir = dir }
}

// WithPollInterval sets the health polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Setup) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithDownTimeout bounds Down. By default Down waits as long as the caller's
// context allows.
func WithDownTimeout(d time.Duration) Option {
	return func(s *Setup) { s.downTimeout = d }
}

// New returns a Setup for the compose project name. files are passed to
// docker compose with -f in order; env is added to the docker process
// environment for variable interpolation.
func New(name string, files []string, workDir string, env map[string]string, opts ...Option) *Setup {
	s := &Setup{
		name:         name,
		files:        append([]string(nil), files...),
		workDir:      workDir,
		env:          make(map[string]string, len(env)),
		runner:       ExecRunner{},
		lockDir:      os.TempDir(),
		pollInterval: DefaultPollInterval,
	}
	for k, v := range env {
		s.env[k] = v
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupName returns the compose project name.
func (s *Setup) SetupName() string { return s.name }

// Files returns the compose files.
func (s *Setup) Files() []string { return append([]string(nil), s.files...) }

// WorkDir returns the working directory docker compose runs in.
func (s *Setup) WorkDir() string { return s.workDir }

// Env returns a copy of the compose environment.
func (s *Setup) Env() map[string]string {
	out := make(map[string]string, len(s.env))
	for k, v := range s.env {
		out[k] = v
	}
	return out
}

// Up starts the project detached and waits until every container is running
// and every health check reports healthy. It returns false if any step fails
// or the timeout elapses.
func (s *Setup) Up(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := s.logger().With().Str("project", s.name).Logger()

	if err := s.acquire(ctx); err != nil {
		log.Error().Err(err).Msg("could not lock compose project")
		s.mu.Lock()
		s.lockDenied = true
		s.mu.Unlock()
		return false
	}

	args := append([]string{"up", "-d"}, s.upArgs...)
	if _, err := s.compose(ctx, args...); err != nil {
		log.Error().Err(err).Msg("docker compose up failed")
		return false
	}

	if s.api == nil {
		log.Debug().Msg("no API client, skipping health wait")
		return true
	}

	start := time.Now()
	if err := s.waitHealthy(ctx, projectFilter(s.name)); err != nil {
		log.Error().Err(err).Msg("containers did not become healthy")
		return false
	}
	log.Debug().Str("took", units.HumanDuration(time.Since(start))).Msg("containers healthy")
	return true
}

// Down stops and removes the project's containers, networks and anonymous
// volumes. It returns false if docker compose down fails.
func (s *Setup) Down(ctx context.Context) bool {
	if s.downTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.downTimeout)
		defer cancel()
	}

	log := s.logger().With().Str("project", s.name).Logger()

	s.mu.Lock()
	denied := s.lockDenied
	s.lockDenied = false
	s.mu.Unlock()
	if denied {
		log.Warn().Msg("project owned by another process, nothing to remove")
		return true
	}

	if err := s.acquire(ctx); err != nil {
		log.Error().Err(err).Msg("could not lock compose project")
		return false
	}
	defer s.release()

	if _, err := s.compose(ctx, "down", "--volumes", "--remove-orphans"); err != nil {
		log.Error().Err(err).Msg("docker compose down failed")
		return false
	}
	return true
}

// Close releases the project lock and the API client.
func (s *Setup) Close() error {
	s.release()
	if s.api != nil {
		return s.api.Close()
	}
	return nil
}

// LockPath returns the project lock file path.
func (s *Setup) LockPath() string {
	return filepath.Join(s.lockDir, "cosy-"+SanitizeProjectName(s.name)+".lock")
}

// acquire takes the cross-process project lock, waiting until ctx is done.
// It is a no-op if this Setup already holds the lock.
func (s *Setup) acquire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lock != nil {
		return nil
	}

	path := s.LockPath()
	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return errLocked(s.name, path)
		}
		return fmt.Errorf("acquiring project lock %s: %w", path, err)
	}
	if !locked {
		return errLocked(s.name, path)
	}
	s.lock = fl
	return nil
}

func (s *Setup) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger().Debug().Err(err).Str("path", s.lock.Path()).Msg("failed to release project lock")
	}
	s.lock = nil
}

// compose runs "docker compose -p NAME -f FILE... ARGS".
func (s *Setup) compose(ctx context.Context, args ...string) ([]byte, error) {
	full := make([]string, 0, 3+2*len(s.files)+len(args))
	full = append(full, "compose", "-p", s.name)
	for _, f := range s.files {
		full = append(full, "-f", f)
	}
	full = append(full, args...)

	s.logger().Debug().Strs("args", full).Msg("running docker")
	return s.runner.Run(ctx, Command{Args: full, Dir: s.workDir, Env: s.environ()})
}

func (s *Setup) environ() []string {
	if len(s.env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.env))
	for k := range s.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+s.env[k])
	}
	return out
}

func (s *Setup) logger() *zerolog.Logger {
	if s.log != nil {
		return s.log
	}
	return &logger.Log
}
