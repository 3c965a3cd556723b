// Package logging builds the zerolog loggers used across carelist.
//
// Interactive sessions own the terminal, so logs go to a rotating file
// (lumberjack) unless --debug asks for stderr. Every command carries a trace
// ID in its context; component loggers tag entries with the subsystem name.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output destinations and formats.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"

	FormatJSON    = "json"
	FormatConsole = "console"
	FormatText    = "text"
)

// Rotation defaults for file output.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 30
)

// logDirPerm is the permission used when creating the log directory.
const logDirPerm = 0o750

// Config describes how a logger is built.
type Config struct {
	Level      string
	Format     string
	Output     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Caller     bool
}

// LogPathResult is the outcome of building a logger, including where it writes.
type LogPathResult struct {
	Logger zerolog.Logger

	// UsingFile is true when entries go to FilePath.
	UsingFile bool
	FilePath  string

	// FallbackUsed is true when file output was requested but stderr is used instead.
	FallbackUsed   bool
	FallbackReason string

	closer io.Closer
}

// Close releases the log file, if any.
func (r *LogPathResult) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// NewLoggerWithPath builds a logger from cfg. A file that cannot be prepared
// falls back to stderr and records why.
func NewLoggerWithPath(cfg Config) LogPathResult {
	level := ParseLevel(cfg.Level)

	var (
		w      io.Writer = os.Stderr
		result LogPathResult
	)

	switch strings.ToLower(cfg.Output) {
	case OutputStdout:
		w = os.Stdout
	case OutputFile:
		rotator, err := newRotator(cfg)
		if err != nil {
			result.FallbackUsed = true
			result.FallbackReason = err.Error()
			break
		}
		w = rotator
		result.UsingFile = true
		result.FilePath = rotator.Filename
		result.closer = rotator
	}

	// Console formatting only makes sense on a terminal stream.
	if !result.UsingFile && isConsoleFormat(cfg.Format) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	result.Logger = ctx.Logger()
	return result
}

func newRotator(cfg Config) (*lumberjack.Logger, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("log output is %q but no file is configured", OutputFile)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), logDirPerm); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeMB
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}
	maxAge := cfg.MaxAgeDays
	if maxAge <= 0 {
		maxAge = DefaultMaxAgeDays
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
	}, nil
}

func isConsoleFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatConsole, FormatText:
		return true
	default:
		return false
	}
}

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// ComponentLogger returns logger tagged with the component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return zerolog.Nop()
	}
	return *zerolog.Ctx(ctx)
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// PrintLogPathMessage tells the user where logs are written.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user that file logging could not be set up.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), logging to stderr\n", reason)
}
