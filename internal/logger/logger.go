package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotated log file written by InitWithFile.
const LogFileName = "cosy.log"

var (
	// Log is the global logger instance. Until Init or InitWithFile is
	// called it writes info and above to stderr.
	Log = newConsoleLogger(os.Stderr, zerolog.InfoLevel)

	// fileWriter is the file output for logging (with rotation)
	fileWriter *lumberjack.Logger

	// logContext holds project/scope context for log entries (optional, may be empty)
	logContext   logContextData
	logContextMu sync.RWMutex
)

// logContextData holds the compose project and test scope stamped on entries.
type logContextData struct {
	Project string
	Scope   string
}

// SetContext sets project and scope context for all subsequent log entries
// written through the package helpers. Pass empty strings to clear.
func SetContext(project, scope string) {
	logContextMu.Lock()
	defer logContextMu.Unlock()
	logContext = logContextData{
		Project: project,
		Scope:   scope,
	}
}

// ClearContext clears the project/scope context.
func ClearContext() {
	SetContext("", "")
}

func getContext() logContextData {
	logContextMu.RLock()
	defer logContextMu.RUnlock()
	return logContext
}

func addContext(event *zerolog.Event) *zerolog.Event {
	ctx := getContext()
	if ctx.Project != "" {
		event = event.Str("project", ctx.Project)
	}
	if ctx.Scope != "" {
		event = event.Str("scope", ctx.Scope)
	}
	return event
}

// LoggingConfig holds configuration for file-based logging.
// It mirrors config.LoggingConfig without importing it.
type LoggingConfig struct {
	FileEnabled *bool
	MaxSizeMB   int
	MaxAgeDays  int
	MaxBackups  int
	Compress    bool
}

// IsFileEnabled returns whether file logging is enabled.
// Defaults to false: test runs log to the console unless asked otherwise.
func (c *LoggingConfig) IsFileEnabled() bool {
	if c.FileEnabled == nil {
		return false
	}
	return *c.FileEnabled
}

// GetMaxSizeMB returns the max size in MB, defaulting to 20 if not set.
func (c *LoggingConfig) GetMaxSizeMB() int {
	if c.MaxSizeMB <= 0 {
		return 20
	}
	return c.MaxSizeMB
}

// GetMaxAgeDays returns the max age in days, defaulting to 7 if not set.
func (c *LoggingConfig) GetMaxAgeDays() int {
	if c.MaxAgeDays <= 0 {
		return 7
	}
	return c.MaxAgeDays
}

// GetMaxBackups returns the max backups, defaulting to 3 if not set.
func (c *LoggingConfig) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

func newConsoleLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

func levelFor(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Init initializes console-only logging on stderr.
func Init(debug bool) {
	Log = newConsoleLogger(os.Stderr, levelFor(debug))
}

// InitWithFile initializes the logger with an additional rotated JSON file
// in logsDir. If logsDir is empty or cfg disables file logging this behaves
// like Init.
func InitWithFile(debug bool, logsDir string, cfg *LoggingConfig) error {
	level := levelFor(debug)
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	if logsDir == "" || cfg == nil || !cfg.IsFileEnabled() {
		Log = zerolog.New(console).Level(level).With().Timestamp().Logger()
		return nil
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	// Re-initializing must not leak the previous file handle.
	_ = CloseFileWriter()

	fileWriter = &lumberjack.Logger{
		Filename:   filepath.Join(logsDir, LogFileName),
		MaxSize:    cfg.GetMaxSizeMB(),
		MaxAge:     cfg.GetMaxAgeDays(),
		MaxBackups: cfg.GetMaxBackups(),
		LocalTime:  true,
		Compress:   cfg.Compress,
	}

	// Console stays human-readable, the file gets JSON.
	Log = zerolog.New(io.MultiWriter(console, fileWriter)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}

// SetOutput points console logging at w, keeping the current level.
// Used by tests and by callers that want logs on the test output.
func SetOutput(w io.Writer) {
	Log = newConsoleLogger(w, Log.GetLevel())
}

// SetLevel parses a zerolog level name ("debug", "info", "warn", ...) and
// applies it to Log.
func SetLevel(name string) error {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	Log = Log.Level(level)
	return nil
}

// CloseFileWriter closes the file writer if it exists.
func CloseFileWriter() error {
	if fileWriter != nil {
		err := fileWriter.Close()
		fileWriter = nil
		return err
	}
	return nil
}

// LogFilePath returns the current log file path, or "" when file logging is off.
func LogFilePath() string {
	if fileWriter != nil {
		return fileWriter.Filename
	}
	return ""
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return addContext(Log.Debug())
}

// Info logs an info message.
func Info() *zerolog.Event {
	return addContext(Log.Info())
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return addContext(Log.Warn())
}

// Error logs an error message.
func Error() *zerolog.Event {
	return addContext(Log.Error())
}

// WithField returns a logger with an additional field
func WithField(key string, value any) zerolog.Logger {
	return Log.With().Interface(key, value).Logger()
}
