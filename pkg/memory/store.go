// Package memory implements a category-partitioned persistent
// key-value store for agent processes. Each category is one JSON
// document on disk, guarded by an advisory cross-process lock, with a
// per-category write policy gating mutation.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/entrhq/recall/pkg/memory/lock"
)

// Defaults for tunables not supplied through options.
const (
	DefaultSearchLimit  = 20
	DefaultMinScore     = 0.6
	DefaultPreviewWidth = 80
	DefaultDigestBudget = 1200
)

// Store is the lock-protected file store. All operations are safe for
// concurrent use from multiple goroutines and, with a cross-process
// locker, from multiple processes sharing the same directory.
type Store struct {
	dir    string
	locker lock.Locker
	logger *slog.Logger

	searchLimit  int
	minScore     float64
	previewWidth int
	digestBudget int

	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLocker replaces the default flock-based locker.
func WithLocker(l lock.Locker) Option {
	return func(s *Store) { s.locker = l }
}

// WithLogger injects a structured logger; defaults to slog.Default().
// A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSearchLimit sets the default result cap for Search.
func WithSearchLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// WithMinScore sets the default fuzzy-match threshold for Search.
func WithMinScore(min float64) Option {
	return func(s *Store) {
		if min > 0 && min <= 1 {
			s.minScore = min
		}
	}
}

// WithPreviewWidth sets the value-preview rune budget for List.
func WithPreviewWidth(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.previewWidth = n
		}
	}
}

// WithDigestBudget sets the default token budget for Digest.
func WithDigestBudget(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.digestBudget = n
		}
	}
}

// withClock overrides time for tests.
func withClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens a store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("memory: store directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("memory: init directory %s: %w", dir, err)
	}

	s := &Store{
		dir:          dir,
		logger:       slog.Default(),
		searchLimit:  DefaultSearchLimit,
		minScore:     DefaultMinScore,
		previewWidth: DefaultPreviewWidth,
		digestBudget: DefaultDigestBudget,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = lock.NewFlock(lock.DefaultTimeout)
	}
	return s, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) docPath(c Category) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *Store) lockPath(c Category) string {
	return filepath.Join(s.dir, string(c)+".lock")
}

// loadDocument reads a category's document under its lock. A missing
// file returns the empty document without locking (no contention is
// possible on nonexistence). Corrupt payloads degrade to an empty
// document with a diagnostic; the corrupt flag lets List surface the
// condition.
func (s *Store) loadDocument(ctx context.Context, c Category) (doc *Document, corrupt bool, err error) {
	path := s.docPath(c)
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return newDocument(), false, nil
	}

	guard, err := s.locker.Acquire(ctx, s.lockPath(c))
	if err != nil {
		return nil, false, err
	}
	defer guard.Release()

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newDocument(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("memory: read %s: %w", path, err)
	}

	doc, corrupt = parseDocument(b)
	if corrupt {
		s.logger.Warn("corrupt memory document, serving empty", "category", c, "path", path)
	}
	return doc, corrupt, nil
}

// mutateDocument runs a read-modify-write cycle on a category's
// document under its lock. mutate returns false to abort without
// persisting. On persist, Updated is re-stamped (monotonically
// non-decreasing) and the document is written atomically via a temp
// file and rename.
func (s *Store) mutateDocument(ctx context.Context, c Category, mutate func(*Document) (bool, error)) error {
	path := s.docPath(c)

	// Locking an absent path is undefined for some backends; make sure
	// the directory and file exist first.
	if err := s.ensureDocument(c); err != nil {
		return err
	}

	guard, err := s.locker.Acquire(ctx, s.lockPath(c))
	if err != nil {
		return err
	}
	defer guard.Release()

	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("memory: read %s: %w", path, err)
	}

	doc := newDocument()
	if len(b) > 0 {
		var corrupt bool
		doc, corrupt = parseDocument(b)
		if corrupt {
			s.logger.Warn("corrupt memory document, starting fresh", "category", c, "path", path)
		}
	}

	changed, err := mutate(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	now := s.now().UTC()
	if doc.Updated != nil && doc.Updated.After(now) {
		now = *doc.Updated
	}
	doc.Updated = &now
	doc.Version = documentVersion

	return s.persist(path, doc)
}

// ensureDocument lazily creates the category's backing file with an
// empty default document.
func (s *Store) ensureDocument(c Category) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("memory: init directory %s: %w", s.dir, err)
	}
	path := s.docPath(c)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("memory: stat %s: %w", path, err)
	}
	b, err := serializeDocument(newDocument())
	if err != nil {
		return err
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		// Another process created it between the stat and here.
		return nil
	}
	if err != nil {
		return fmt.Errorf("memory: create %s: %w", path, err)
	}
	if _, err := fh.Write(b); err != nil {
		fh.Close()
		return fmt.Errorf("memory: write %s: %w", path, err)
	}
	return fh.Close()
}

// persist writes atomically via a temporary file in the same directory
// so no reader can observe a partially written document.
func (s *Store) persist(path string, doc *Document) error {
	b, err := serializeDocument(doc)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("memory: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("memory: atomic rename %s: %w", path, err)
	}
	return nil
}

// snapshot loads the documents of the given categories, each under its
// own lock. There is no cross-category transaction: the view is
// consistent per category, not across categories.
func (s *Store) snapshot(ctx context.Context, cats []Category) (map[Category]*Document, error) {
	out := make(map[Category]*Document, len(cats))
	for _, c := range cats {
		doc, _, err := s.loadDocument(ctx, c)
		if err != nil {
			return nil, err
		}
		out[c] = doc
	}
	return out, nil
}
