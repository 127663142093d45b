// Package debuglog writes timestamped diagnostic lines to files under the
// user state directory. Logging is opt-in; a nil *Logger discards everything
// so callers never need to branch.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Logger struct {
	mu sync.Mutex
	f  *os.File
}

// Dir returns the log directory, creating it if needed.
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state.
func Dir() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateHome, "textpolish", "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return dir, nil
}

// Open creates or appends to the dated log file for name.
func Open(name string) (*Logger, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", name, time.Now().Format("20060102")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{f: f}, nil
}

// Enabled reports whether debug logging was requested via the environment.
func Enabled() bool {
	v := os.Getenv("TEXTPOLISH_DEBUG")
	return v != "" && v != "0" && v != "false"
}

// Printf appends one timestamped line. Safe on a nil Logger.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.f == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, "%s %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}

// Close releases the underlying file. Safe on a nil Logger.
func (l *Logger) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Close()
}
