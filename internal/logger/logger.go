// Package logger provides a process-wide structured logger.
// The chat TUI owns the terminal, so output goes to a file unless
// the caller points it somewhere else.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	current  = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelVar}))
	logFile  *os.File
)

// SetDebug switches between debug and info level
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Init opens path for appending and routes all log output there.
// Calling Init again replaces the previous destination.
func Init(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	current = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	current.Debug("logger initialized", "path", path)
	return nil
}

// SetOutput routes log output to w (stderr for the serve command, buffers in tests)
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	current = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// Close releases the log file, if any, and silences further output
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	current = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelVar}))
}

// Get returns the current logger
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// With returns a logger carrying the given attributes
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

func Info(msg string, args ...any) { Get().Info(msg, args...) }

func Warn(msg string, args ...any) { Get().Warn(msg, args...) }

func Error(msg string, args ...any) { Get().Error(msg, args...) }
