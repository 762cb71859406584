// Package logging provides the session-scoped file logger for the
// recall CLI. Each invocation writes to its own file under
// ~/.recall/logs/, falling back to stderr when the home directory is
// unavailable.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// Session ID for the current execution, shared by all loggers.
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("logging: resolve home directory: %w", err)
			return
		}
		logDir = filepath.Join(homeDir, ".recall", "logs")
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			initErr = fmt.Errorf("logging: create log directory: %w", err)
			return
		}
	})
	return initErr
}

// SessionLogger is a structured logger bound to a per-invocation log
// file.
type SessionLogger struct {
	*slog.Logger

	file      *os.File
	logPath   string
	closeOnce sync.Once
	closeErr  error
}

// NewSessionLogger opens the session log file and returns a logger
// writing to it. With debug set, Debug-level records are kept. If file
// logging cannot be initialized, a stderr logger is returned together
// with the error so the caller can warn; the logger is still usable.
func NewSessionLogger(debug bool) (*SessionLogger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if err := initLogDirectory(); err != nil {
		return fallbackLogger(opts), err
	}

	name := fmt.Sprintf("recall-%s-%s.log", time.Now().UTC().Format("20060102-150405"), getSessionID())
	logPath := filepath.Join(logDir, name)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fallbackLogger(opts), fmt.Errorf("logging: open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(file, opts)).With("session", getSessionID())
	return &SessionLogger{Logger: logger, file: file, logPath: logPath}, nil
}

func fallbackLogger(opts *slog.HandlerOptions) *SessionLogger {
	return &SessionLogger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, opts)).With("session", getSessionID()),
	}
}

// LogPath returns the path of the session log file, empty in fallback
// mode.
func (l *SessionLogger) LogPath() string {
	return l.logPath
}

// SessionID returns the ID shared by all loggers in this invocation.
func (l *SessionLogger) SessionID() string {
	return getSessionID()
}

// Close closes the log file. Safe to call multiple times.
func (l *SessionLogger) Close() error {
	l.closeOnce.Do(func() {
		if l.file != nil {
			l.closeErr = l.file.Close()
		}
	})
	return l.closeErr
}
