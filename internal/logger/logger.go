// Package logger provides leveled, structured logging for the module,
// built on log/slog with a colored text handler for terminals and a JSON
// handler for machine consumption.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu       sync.RWMutex
	slogger  *slog.Logger
	levelVar = new(slog.LevelVar)
	format   = "text"

	output   io.Writer = os.Stderr
	useColor           = isTerminal(os.Stderr.Fd())
)

func init() {
	rebuild()
}

// rebuild swaps the slog handler for the current settings. Callers hold mu.
func rebuild() {
	var h slog.Handler
	opts := &slog.HandlerOptions{Level: levelVar}
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = newTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// Init configures the package-level logger. Unset fields keep their
// current values.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "":
		// keep current output
	case "stdout":
		output = os.Stdout
		useColor = isTerminal(os.Stdout.Fd())
	case "stderr":
		output = os.Stderr
		useColor = isTerminal(os.Stderr.Fd())
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
		useColor = false
	}

	if cfg.Level != "" {
		if lvl, ok := parseLevel(cfg.Level); ok {
			levelVar.Set(lvl)
		}
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "json" {
		format = f
	}

	rebuild()
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily for tests.
func InitWithWriter(w io.Writer, level, fmtName string) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	useColor = false
	if lvl, ok := parseLevel(level); ok {
		levelVar.Set(lvl)
	}
	if f := strings.ToLower(fmtName); f == "text" || f == "json" {
		format = f
	}
	rebuild()
}

// SetLevel sets the minimum log level. Invalid levels are ignored.
func SetLevel(level string) {
	if lvl, ok := parseLevel(level); ok {
		levelVar.Set(lvl)
	}
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level with structured fields.
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at info level with structured fields.
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at warn level with structured fields.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at error level with structured fields.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}
