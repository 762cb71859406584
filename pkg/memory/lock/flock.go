package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Flock locks through the OS advisory file lock (BSD flock). The
// kernel releases the lock when the holding process dies, so no
// staleness bookkeeping is needed. This is the default backend.
type Flock struct {
	timeout time.Duration
}

// NewFlock returns a Flock locker. A non-positive timeout uses
// DefaultTimeout.
func NewFlock(timeout time.Duration) *Flock {
	return &Flock{timeout: timeout}
}

func (f *Flock) Acquire(ctx context.Context, path string) (Guard, error) {
	fl := flock.New(path)
	err := acquireLoop(ctx, f.timeout, func() (bool, error) {
		ok, err := fl.TryLock()
		if err != nil {
			return false, fmt.Errorf("lock: try flock %s: %w", path, err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}
	return &flockGuard{fl: fl}, nil
}

type flockGuard struct {
	fl   *flock.Flock
	once sync.Once
	err  error
}

func (g *flockGuard) Release() error {
	g.once.Do(func() {
		g.err = g.fl.Unlock()
	})
	return g.err
}
