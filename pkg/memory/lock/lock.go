// Package lock provides advisory cross-process locking for the memory
// store's per-category document files. Locks are cooperative: they are
// only effective against other participants honoring the same
// convention, not against arbitrary external writers.
package lock

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrNotAcquired is returned when a lock could not be acquired within
// the retry budget. Callers treat it as "operation not completed,
// retry later", never as a crash.
var ErrNotAcquired = errors.New("lock: not acquired within retry budget")

// Guard is a held exclusive lock. Release must be called on every exit
// path; it is safe to call more than once.
type Guard interface {
	Release() error
}

// Locker acquires exclusive advisory locks keyed by file path.
type Locker interface {
	Acquire(ctx context.Context, path string) (Guard, error)
}

const (
	// DefaultTimeout bounds the whole acquisition attempt.
	DefaultTimeout = 5 * time.Second

	// DefaultStaleAfter is how long a lockfile-backend lock may be held
	// before a new acquirer forcibly reclaims it. A writer that
	// legitimately runs longer than this risks a second writer
	// interleaving; accepted trade-off.
	DefaultStaleAfter = 30 * time.Second

	baseDelay = 25 * time.Millisecond
	maxDelay  = 400 * time.Millisecond
)

// acquireLoop retries try with exponential backoff and randomized
// jitter until it succeeds, the deadline passes, or ctx is cancelled.
func acquireLoop(ctx context.Context, timeout time.Duration, try func() (bool, error)) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	delay := baseDelay

	for {
		ok, err := try()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrNotAcquired
		}

		// Jitter avoids synchronized retry storms across processes.
		sleep := delay + time.Duration(rand.Int63n(int64(delay/2)+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
