package lock

import (
	"context"
	"sync"
	"time"
)

// MemLock is an in-process locker keyed by path, for deterministic
// tests and single-process embedded use. It provides no cross-process
// exclusion.
type MemLock struct {
	timeout time.Duration

	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemLock returns a MemLock. A non-positive timeout uses
// DefaultTimeout.
func NewMemLock(timeout time.Duration) *MemLock {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &MemLock{timeout: timeout, slots: make(map[string]chan struct{})}
}

func (m *MemLock) slot(path string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[path]
	if !ok {
		s = make(chan struct{}, 1)
		m.slots[path] = s
	}
	return s
}

func (m *MemLock) Acquire(ctx context.Context, path string) (Guard, error) {
	s := m.slot(path)
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case s <- struct{}{}:
		return &memGuard{slot: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrNotAcquired
	}
}

type memGuard struct {
	slot chan struct{}
	once sync.Once
}

func (g *memGuard) Release() error {
	g.once.Do(func() {
		<-g.slot
	})
	return nil
}
