// Package config loads cosy.yaml, the file describing a compose test
// environment for the cosy CLI and for test binaries that prefer a file over
// programmatic construction.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/shlex"

	"github.com/schmitthub/cosytest/internal/logger"
	"github.com/schmitthub/cosytest/pkg/compose"
	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

// DefaultComposeFile is used when files is empty.
const DefaultComposeFile = "compose.yaml"

// Config is the parsed cosy.yaml.
type Config struct {
	// Project is the compose project name. With UniqueProject set it becomes
	// a prefix for a generated name.
	Project       string `mapstructure:"project"`
	UniqueProject bool   `mapstructure:"unique_project"`

	Files   []string          `mapstructure:"files"`
	WorkDir string            `mapstructure:"workdir"`
	Env     map[string]string `mapstructure:"env"`
	// UpArgs are extra "docker compose up -d" arguments, split like a shell would.
	UpArgs  string `mapstructure:"up_args"`
	LockDir string `mapstructure:"lock_dir"`

	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
	KeepOnSuccess  bool          `mapstructure:"keep_on_success"`
	KeepOnFailure  bool          `mapstructure:"keep_on_failure"`

	LogDump LogDumpConfig `mapstructure:"log_dump"`
	Logging LoggingConfig `mapstructure:"logging"`

	// path is the file this config was read from. Relative paths resolve
	// against its directory.
	path string
}

// LogDumpConfig is where container logs go when a scope fails.
type LogDumpConfig struct {
	Dir  string `mapstructure:"dir"`
	File string `mapstructure:"file"`
}

// LoggingConfig configures the cosy log file.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	FileEnabled *bool  `mapstructure:"file_enabled"`
	Dir         string `mapstructure:"dir"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	MaxBackups  int    `mapstructure:"max_backups"`
	Compress    bool   `mapstructure:"compress"`
}

// LoggerConfig converts c for logger.InitWithFile.
func (c LoggingConfig) LoggerConfig() *logger.LoggingConfig {
	return &logger.LoggingConfig{
		FileEnabled: c.FileEnabled,
		MaxSizeMB:   c.MaxSizeMB,
		MaxAgeDays:  c.MaxAgeDays,
		MaxBackups:  c.MaxBackups,
		Compress:    c.Compress,
	}
}

// DefaultConfig returns the values used for keys missing from cosy.yaml.
func DefaultConfig() *Config {
	return &Config{
		Files:          []string{DefaultComposeFile},
		StartupTimeout: lifecycle.DefaultStartupTimeout,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the file the config was loaded from, or "" for configs built
// in code.
func (c *Config) Path() string {
	return c.path
}

// Validate reports the first problem that would keep the environment from
// starting.
func (c *Config) Validate() error {
	if c.Project == "" && !c.UniqueProject {
		return errors.New("project is required unless unique_project is set")
	}
	if c.Project != "" && compose.SanitizeProjectName(c.Project) != c.Project {
		return fmt.Errorf("project %q is not a valid compose project name (try %q)",
			c.Project, compose.SanitizeProjectName(c.Project))
	}
	if len(c.Files) == 0 {
		return errors.New("at least one compose file is required")
	}
	if c.StartupTimeout < 0 {
		return fmt.Errorf("startup_timeout must not be negative, got %s", c.StartupTimeout)
	}
	if _, err := c.ParsedUpArgs(); err != nil {
		return err
	}
	return nil
}

// ParsedUpArgs splits UpArgs into arguments.
func (c *Config) ParsedUpArgs() ([]string, error) {
	if c.UpArgs == "" {
		return nil, nil
	}
	args, err := shlex.Split(c.UpArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid up_args %q: %w", c.UpArgs, err)
	}
	return args, nil
}

// ProjectName returns the compose project name, generating a unique one when
// UniqueProject is set. Each call generates a new name.
func (c *Config) ProjectName() string {
	if c.UniqueProject {
		return compose.UniqueProjectName(c.Project)
	}
	return c.Project
}

// ResolvedWorkDir returns WorkDir as an absolute path. An empty WorkDir is the
// directory of the config file.
func (c *Config) ResolvedWorkDir() string {
	base := "."
	if c.path != "" {
		base = filepath.Dir(c.path)
	}
	dir := c.WorkDir
	if dir == "" {
		dir = base
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// ResolvedLogDumpDir returns LogDump.Dir resolved like ResolvedWorkDir.
func (c *Config) ResolvedLogDumpDir() string {
	if c.LogDump.Dir == "" || filepath.IsAbs(c.LogDump.Dir) {
		return c.LogDump.Dir
	}
	return filepath.Join(c.ResolvedWorkDir(), c.LogDump.Dir)
}

// Setup builds the compose setup described by c. name overrides the project
// name when non-empty. opts are applied after the ones derived from c.
func (c *Config) Setup(name string, opts ...compose.Option) (*compose.Setup, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		name = c.ProjectName()
	}
	upArgs, _ := c.ParsedUpArgs()

	var base []compose.Option
	if len(upArgs) > 0 {
		base = append(base, compose.WithUpArgs(upArgs...))
	}
	if c.LockDir != "" {
		base = append(base, compose.WithLockDir(c.LockDir))
	}
	return compose.New(name, c.Files, c.ResolvedWorkDir(), c.Env, append(base, opts...)...), nil
}

// Coordinator builds a coordinator for env using the retention and log dump
// settings in c. opts are applied after the ones derived from c.
func (c *Config) Coordinator(env lifecycle.Environment, opts ...lifecycle.Option) *lifecycle.Coordinator {
	base := []lifecycle.Option{
		lifecycle.WithStartupTimeout(c.StartupTimeout),
		lifecycle.WithKeepOnSuccess(c.KeepOnSuccess),
		lifecycle.WithKeepOnFailure(c.KeepOnFailure),
	}
	switch {
	case c.LogDump.Dir != "" && c.LogDump.File != "":
		base = append(base, lifecycle.WithLogDump(c.ResolvedLogDumpDir(), c.LogDump.File))
	case c.LogDump.Dir != "" || c.LogDump.File != "":
		logger.Debug().
			Str("dir", c.LogDump.Dir).
			Str("file", c.LogDump.File).
			Msg("log_dump needs both dir and file, logs will not be dumped")
	}
	return lifecycle.New(env, append(base, opts...)...)
}
