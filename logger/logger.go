// Package logger writes structured logs to a file. The terminal belongs to
// the dashboard while it runs, so nothing is ever logged to stdout or stderr.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultFileName is the log file created in the temp dir when no path is set.
const DefaultFileName = "machview.log"

// DefaultPath returns the log file used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

// Level returns the minimum level for the given debug setting.
func Level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Init opens path for appending and returns a text logger writing to it.
// The returned closer releases the file.
func Init(path string, debug bool) (*slog.Logger, io.Closer, error) {
	if path == "" {
		path = DefaultPath()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	log := New(f, debug)
	log.Debug("logger initialized", "path", path)
	return log, f, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(debug)}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
