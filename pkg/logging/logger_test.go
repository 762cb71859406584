package logging

import (
	"os"
	"strings"
	"testing"
)

func TestSessionIDStable(t *testing.T) {
	a := getSessionID()
	b := getSessionID()
	if a != b {
		t.Errorf("Expected stable session ID, got %q then %q", a, b)
	}
	if len(a) < 10 {
		t.Errorf("Expected UUID-sized session ID, got %q", a)
	}
}

func TestNewSessionLogger(t *testing.T) {
	// Point HOME at a temp dir so the test does not touch the real
	// ~/.recall. The init is sync.Once-guarded, so only the first test
	// binary invocation exercises the directory creation.
	t.Setenv("HOME", t.TempDir())

	logger, err := NewSessionLogger(true)
	if err != nil {
		t.Fatalf("NewSessionLogger failed: %v", err)
	}
	defer logger.Close()

	logger.Info("hello", "key", "value")
	logger.Debug("debug line")

	if logger.LogPath() == "" {
		t.Skip("fallback mode, nothing on disk to verify")
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	b, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(b)
	if !strings.Contains(content, "hello") {
		t.Errorf("Expected log file to contain the info record, got %q", content)
	}
	if !strings.Contains(content, "debug line") {
		t.Errorf("Expected debug records with debug enabled, got %q", content)
	}
	if !strings.Contains(content, logger.SessionID()) {
		t.Errorf("Expected session ID in records")
	}
}

func TestCloseIdempotent(t *testing.T) {
	logger, err := NewSessionLogger(false)
	if err != nil {
		t.Skipf("file logging unavailable: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Second Close should be a no-op, got %v", err)
	}
}
