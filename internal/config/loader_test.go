package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewLoader_ConfigPath(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, ConfigFileName), NewLoader(dir).ConfigPath())
	assert.Equal(t, filepath.Join(dir, "ci.yaml"), NewLoader(filepath.Join(dir, "ci.yaml")).ConfigPath())
	assert.Equal(t, filepath.Join(".", ConfigFileName), NewLoader("").ConfigPath())
}

func TestLoader_Exists(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(dir)
	assert.False(t, loader.Exists())

	writeConfig(t, dir, "project: orders\n")
	assert.True(t, loader.Exists())
}

func TestLoader_LoadMissingFile(t *testing.T) {
	_, err := NewLoader(t.TempDir()).Load()
	require.Error(t, err)
	assert.True(t, IsConfigNotFound(err))
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestLoader_LoadFull(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
project: orders
files:
  - compose.yaml
  - compose.ci.yaml
workdir: deploy
env:
  POSTGRES_PASSWORD: secret
  Tag: v1
up_args: --build --pull "missing"
startup_timeout: 90s
keep_on_failure: true
log_dump:
  dir: build/logs
  file: orders.tar.gz
logging:
  level: debug
  file_enabled: true
  max_size_mb: 5
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.Project)
	assert.False(t, cfg.UniqueProject)
	assert.Equal(t, []string{"compose.yaml", "compose.ci.yaml"}, cfg.Files)
	assert.Equal(t, filepath.Join(dir, "deploy"), cfg.ResolvedWorkDir())
	assert.Equal(t, map[string]string{"POSTGRES_PASSWORD": "secret", "Tag": "v1"}, cfg.Env)
	assert.Equal(t, 90*time.Second, cfg.StartupTimeout)
	assert.False(t, cfg.KeepOnSuccess)
	assert.True(t, cfg.KeepOnFailure)
	assert.Equal(t, filepath.Join(dir, "deploy", "build/logs"), cfg.ResolvedLogDumpDir())
	assert.Equal(t, "orders.tar.gz", cfg.LogDump.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NotNil(t, cfg.Logging.FileEnabled)
	assert.True(t, *cfg.Logging.FileEnabled)
	assert.Equal(t, 5, cfg.Logging.MaxSizeMB)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.Path())

	args, err := cfg.ParsedUpArgs()
	require.NoError(t, err)
	assert.Equal(t, []string{"--build", "--pull", "missing"}, args)
}

func TestLoader_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "project: orders\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultComposeFile}, cfg.Files)
	assert.Equal(t, 5*time.Minute, cfg.StartupTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, dir, cfg.ResolvedWorkDir())
	assert.Empty(t, cfg.LogDump.Dir)
}

func TestLoader_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "project: orders\nkeep_on_failure: false\n")

	t.Setenv("COSY_KEEP_ON_FAILURE", "true")
	t.Setenv("COSY_STARTUP_TIMEOUT", "45s")
	t.Setenv("COSY_FILES", "a.yaml,b.yaml")
	t.Setenv("COSY_LOG_DUMP_DIR", "/tmp/logs")
	t.Setenv("COSY_LOG_DUMP_FILE", "dump.tar.gz")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.True(t, cfg.KeepOnFailure)
	assert.Equal(t, 45*time.Second, cfg.StartupTimeout)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Files)
	assert.Equal(t, "/tmp/logs", cfg.ResolvedLogDumpDir())
	assert.Equal(t, "dump.tar.gz", cfg.LogDump.File)
}

func TestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "no project", content: "files: [compose.yaml]\n", wantErr: "project is required"},
		{name: "bad project", content: "project: My App\n", wantErr: "not a valid compose project name"},
		{name: "bad up args", content: "project: orders\nup_args: '--build \"oops'\n", wantErr: "invalid up_args"},
		{name: "bad duration", content: "project: orders\nstartup_timeout: soon\n", wantErr: "failed to parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := NewLoader(dir).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoader_InvalidConfigErrorUnwraps(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "files: [compose.yaml]\n")

	_, err := NewLoader(dir).Load()
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), invalid.Path)
	assert.NotNil(t, invalid.Unwrap())
}

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "project: orders\n")

	loader := NewLoader(dir)
	_, err := loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 4)
	loader.Watch(func(_ fsnotify.Event, cfg *Config, err error) {
		if err != nil || !cfg.KeepOnSuccess {
			return
		}
		select {
		case changed <- cfg:
		default:
		}
	})

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("project: orders\nkeep_on_success: true\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.True(t, cfg.KeepOnSuccess)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
