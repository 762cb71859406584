package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// lockInfo is the payload written into a lockfile so that contenders
// can name the holder and judge staleness.
type lockInfo struct {
	Owner      string    `json:"owner"`
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// FileLock implements locking with an O_CREATE|O_EXCL sidecar file.
// It exists for filesystems where BSD flock is unreliable (NFS). A
// lock held longer than staleAfter is forcibly reclaimed by the next
// acquirer.
type FileLock struct {
	timeout    time.Duration
	staleAfter time.Duration
	owner      string
	logger     *slog.Logger
}

// NewFileLock returns a FileLock locker. Non-positive durations use
// the package defaults. The owner token identifies this process in
// holder diagnostics.
func NewFileLock(timeout, staleAfter time.Duration, logger *slog.Logger) *FileLock {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLock{
		timeout:    timeout,
		staleAfter: staleAfter,
		owner:      uuid.New().String(),
		logger:     logger,
	}
}

func (f *FileLock) Acquire(ctx context.Context, path string) (Guard, error) {
	var holder *lockInfo

	err := acquireLoop(ctx, f.timeout, func() (bool, error) {
		ok, h, err := f.tryAcquire(path)
		if h != nil {
			holder = h
		}
		return ok, err
	})
	if err != nil {
		if errors.Is(err, ErrNotAcquired) && holder != nil {
			return nil, fmt.Errorf("%w (held by %s, pid %d, since %s)",
				ErrNotAcquired, holder.Owner, holder.PID,
				holder.AcquiredAt.Format(time.RFC3339))
		}
		return nil, err
	}
	return &fileGuard{path: path}, nil
}

// tryAcquire makes a single attempt. It returns the current holder's
// info when the lock is contended so the caller can surface it.
func (f *FileLock) tryAcquire(path string) (bool, *lockInfo, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		info := lockInfo{Owner: f.owner, PID: os.Getpid(), AcquiredAt: time.Now().UTC()}
		enc := json.NewEncoder(fh)
		if werr := enc.Encode(info); werr != nil {
			fh.Close()
			_ = os.Remove(path)
			return false, nil, fmt.Errorf("lock: write lockfile %s: %w", path, werr)
		}
		if cerr := fh.Close(); cerr != nil {
			_ = os.Remove(path)
			return false, nil, fmt.Errorf("lock: close lockfile %s: %w", path, cerr)
		}
		return true, nil, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return false, nil, fmt.Errorf("lock: create lockfile %s: %w", path, err)
	}

	holder := f.readHolder(path)
	if holder != nil && time.Since(holder.AcquiredAt) > f.staleAfter {
		f.logger.Warn("reclaiming stale lock",
			"path", path, "holder", holder.Owner, "pid", holder.PID,
			"age", time.Since(holder.AcquiredAt).Round(time.Second))
		_ = os.Remove(path)
		// Next loop iteration races other reclaimers for the create.
		return false, nil, nil
	}
	return false, holder, nil
}

// readHolder best-effort decodes the holder info; an unreadable or
// garbled lockfile yields nil and the normal backoff applies.
func (f *FileLock) readHolder(path string) *lockInfo {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var info lockInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil
	}
	return &info
}

type fileGuard struct {
	path string
	once sync.Once
	err  error
}

func (g *fileGuard) Release() error {
	g.once.Do(func() {
		g.err = os.Remove(g.path)
	})
	return g.err
}
