package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/schmitthub/cosytest/internal/logger"
)

const (
	// ConfigFileName is the default configuration file name
	ConfigFileName = "cosy.yaml"

	// EnvPrefix prefixes environment overrides, e.g. COSY_KEEP_ON_FAILURE.
	EnvPrefix = "COSY"
)

// Loader handles loading and parsing of cosy configuration
type Loader struct {
	path  string
	viper *viper.Viper
}

// NewLoader creates a loader for path. A directory means path/cosy.yaml.
func NewLoader(path string) *Loader {
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || filepath.Ext(path) == "" {
		path = filepath.Join(path, ConfigFileName)
	}
	return &Loader{
		path:  path,
		viper: viper.New(),
	}
}

// ConfigPath returns the full path to the config file
func (l *Loader) ConfigPath() string {
	return l.path
}

// Exists checks if the configuration file exists
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Load reads cosy.yaml, applies COSY_* environment overrides and validates
// the result.
func (l *Loader) Load() (*Config, error) {
	if !l.Exists() {
		return nil, &ConfigNotFoundError{Path: l.path}
	}

	l.viper.SetConfigFile(l.path)
	l.viper.SetConfigType("yaml")

	defaults := DefaultConfig()
	l.viper.SetDefault("project", "")
	l.viper.SetDefault("unique_project", false)
	l.viper.SetDefault("files", defaults.Files)
	l.viper.SetDefault("workdir", "")
	l.viper.SetDefault("up_args", "")
	l.viper.SetDefault("lock_dir", "")
	l.viper.SetDefault("startup_timeout", defaults.StartupTimeout)
	l.viper.SetDefault("keep_on_success", false)
	l.viper.SetDefault("keep_on_failure", false)
	l.viper.SetDefault("log_dump.dir", "")
	l.viper.SetDefault("log_dump.file", "")
	l.viper.SetDefault("logging.level", defaults.Logging.Level)
	l.viper.SetDefault("logging.dir", "")
	l.viper.SetDefault("logging.file_enabled", false)
	l.viper.SetDefault("logging.max_size_mb", 0)
	l.viper.SetDefault("logging.max_age_days", 0)
	l.viper.SetDefault("logging.max_backups", 0)
	l.viper.SetDefault("logging.compress", false)

	l.viper.SetEnvPrefix(EnvPrefix)
	l.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.viper.AutomaticEnv()

	if err := l.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.path = l.path

	// Viper lowercases map keys. Environment variable names are case sensitive.
	if err := l.fixEnvKeyCase(&cfg); err != nil {
		logger.Warn().Err(err).Str("path", l.path).Msg("could not preserve env key case")
	}

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{Path: l.path, Err: err}
	}
	return &cfg, nil
}

// fixEnvKeyCase re-reads the YAML to preserve original case for env keys.
func (l *Loader) fixEnvKeyCase(cfg *Config) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}

	var raw struct {
		Env map[string]string `yaml:"env"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw.Env) > 0 {
		cfg.Env = raw.Env
	}
	return nil
}

// Watch calls onChange with the reloaded config every time the file is
// written. Load must have succeeded first.
func (l *Loader) Watch(onChange func(fsnotify.Event, *Config, error)) {
	l.viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		onChange(e, cfg, err)
	})
	l.viper.WatchConfig()
}

// ConfigNotFoundError is returned when the config file doesn't exist
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// IsConfigNotFound returns true if the error is a ConfigNotFoundError
func IsConfigNotFound(err error) bool {
	var notFound *ConfigNotFoundError
	return errors.As(err, &notFound)
}

// InvalidConfigError wraps a validation failure with the file it came from.
type InvalidConfigError struct {
	Path string
	Err  error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration in %s: %v", e.Path, e.Err)
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }
