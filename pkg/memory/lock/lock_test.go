package lock

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMemLockMutualExclusion(t *testing.T) {
	m := NewMemLock(2 * time.Second)
	ctx := context.Background()
	path := "category.lock"

	var held int
	var max int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := m.Acquire(ctx, path)
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			held++
			if held > max {
				max = held
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			held--
			mu.Unlock()
			if err := g.Release(); err != nil {
				t.Errorf("Release failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Errorf("Expected at most one holder at a time, saw %d", max)
	}
}

func TestMemLockTimeout(t *testing.T) {
	m := NewMemLock(50 * time.Millisecond)
	ctx := context.Background()

	g, err := m.Acquire(ctx, "busy.lock")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer g.Release()

	_, err = m.Acquire(ctx, "busy.lock")
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("Expected ErrNotAcquired on contended lock, got %v", err)
	}
}

func TestMemLockContextCancellation(t *testing.T) {
	m := NewMemLock(10 * time.Second)

	g, err := m.Acquire(context.Background(), "held.lock")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer g.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = m.Acquire(ctx, "held.lock")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestMemLockReleaseIdempotent(t *testing.T) {
	m := NewMemLock(time.Second)
	g, err := m.Acquire(context.Background(), "x.lock")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := g.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := g.Release(); err != nil {
		t.Fatalf("Second Release should be a no-op, got %v", err)
	}

	// The slot must be free again.
	g2, err := m.Acquire(context.Background(), "x.lock")
	if err != nil {
		t.Fatalf("Reacquire after release failed: %v", err)
	}
	g2.Release()
}

func TestFileLockAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.lock")
	f := NewFileLock(200*time.Millisecond, time.Minute, nil)
	ctx := context.Background()

	g, err := f.Acquire(ctx, path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// The lockfile names its holder.
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var info lockInfo
	if err := json.Unmarshal(b, &info); err != nil {
		t.Fatalf("Lockfile payload does not parse: %v", err)
	}
	if info.PID != os.Getpid() {
		t.Errorf("Expected holder pid %d, got %d", os.Getpid(), info.PID)
	}

	if err := g.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected lockfile removed on release")
	}
}

func TestFileLockContentionNamesHolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.lock")
	ctx := context.Background()

	holder := NewFileLock(200*time.Millisecond, time.Minute, nil)
	g, err := holder.Acquire(ctx, path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer g.Release()

	contender := NewFileLock(150*time.Millisecond, time.Minute, nil)
	_, err = contender.Acquire(ctx, path)
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("Expected ErrNotAcquired, got %v", err)
	}
	if !strings.Contains(err.Error(), "held by") {
		t.Errorf("Expected holder info in error, got %q", err.Error())
	}
}

func TestFileLockStaleReclaim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.lock")

	// Plant a lockfile that looks long-abandoned.
	stale := lockInfo{Owner: "dead-process", PID: 99999, AcquiredAt: time.Now().Add(-time.Hour)}
	b, _ := json.Marshal(stale)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f := NewFileLock(time.Second, 30*time.Second, nil)
	g, err := f.Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected stale lock to be reclaimed, got %v", err)
	}
	g.Release()
}

func TestFlockAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.lock")
	f := NewFlock(time.Second)
	ctx := context.Background()

	g, err := f.Acquire(ctx, path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := g.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	// Reacquirable after release.
	g2, err := f.Acquire(ctx, path)
	if err != nil {
		t.Fatalf("Reacquire failed: %v", err)
	}
	g2.Release()
}
