package lifecycle

import (
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	startupTimeout time.Duration
	policy         Policy
	dump           LogDumpTarget
	log            *zerolog.Logger
}

// Option configures New.
type Option func(*options)

// WithStartupTimeout bounds bring-up. Non-positive values keep the default.
func WithStartupTimeout(d time.Duration) Option {
	return func(o *options) {
		o.startupTimeout = d
	}
}

// WithPolicy sets both retention flags at once.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithKeepOnSuccess retains containers when no test failed.
func WithKeepOnSuccess(keep bool) Option {
	return func(o *options) {
		o.policy.KeepOnSuccess = keep
	}
}

// WithKeepOnFailure retains containers when a test failed.
func WithKeepOnFailure(keep bool) Option {
	return func(o *options) {
		o.policy.KeepOnFailure = keep
	}
}

// WithLogDump sets where logs are archived after a failure.
func WithLogDump(dir, fileName string) Option {
	return func(o *options) {
		o.dump = LogDumpTarget{Dir: dir, FileName: fileName}
	}
}

// WithLogger routes coordinator logs to l instead of the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = &l
	}
}

// Builder accumulates coordinator settings fluently:
//
//	c := lifecycle.NewBuilder(setup).
//		WithKeepOnFailure(true).
//		WithLogDumpLocation("build/logs").
//		WithLogDumpFileName("compose.tar.gz").
//		Build()
type Builder struct {
	env  Environment
	opts []Option
}

// NewBuilder starts a Builder for env. env may be nil.
func NewBuilder(env Environment) *Builder {
	return &Builder{env: env}
}

// WithStartupTimeout bounds bring-up (default 5 minutes).
func (b *Builder) WithStartupTimeout(d time.Duration) *Builder {
	b.opts = append(b.opts, WithStartupTimeout(d))
	return b
}

// WithKeepOnSuccess retains containers when no test failed (default false).
func (b *Builder) WithKeepOnSuccess(keep bool) *Builder {
	b.opts = append(b.opts, WithKeepOnSuccess(keep))
	return b
}

// WithKeepOnFailure retains containers when a test failed (default false).
func (b *Builder) WithKeepOnFailure(keep bool) *Builder {
	b.opts = append(b.opts, WithKeepOnFailure(keep))
	return b
}

// WithLogDumpLocation sets the dump directory.
func (b *Builder) WithLogDumpLocation(dir string) *Builder {
	b.opts = append(b.opts, func(o *options) { o.dump.Dir = dir })
	return b
}

// WithLogDumpFileName sets the dump file name.
func (b *Builder) WithLogDumpFileName(name string) *Builder {
	b.opts = append(b.opts, func(o *options) { o.dump.FileName = name })
	return b
}

// WithLogger routes coordinator logs to l.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(l))
	return b
}

// Build returns a new Coordinator. The Builder may be reused.
func (b *Builder) Build() *Coordinator {
	return New(b.env, b.opts...)
}
