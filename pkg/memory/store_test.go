package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/recall/pkg/memory/lock"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLocker(lock.NewMemLock(2 * time.Second))}, opts...)
	s, err := New(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wr, err := s.Write(ctx, WriteRequest{
		Category: "user-preferences",
		Key:      "verbosity",
		Value:    "concise",
		Reason:   "user asked for short answers",
		Metadata: map[string]interface{}{"source": "chat"},
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !wr.Saved || !wr.Success {
		t.Fatalf("Expected saved write, got %+v", wr)
	}
	if !wr.Created {
		t.Errorf("Expected Created for a fresh key")
	}

	rr, err := s.Read(ctx, ReadRequest{Category: "user-preferences", Key: "verbosity"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rr.Entry == nil || rr.Entry.Value != "concise" {
		t.Fatalf("Expected value %q, got %+v", "concise", rr.Entry)
	}
	if rr.Entry.Reason != "user asked for short answers" {
		t.Errorf("Expected reason to round-trip, got %q", rr.Entry.Reason)
	}
	if rr.Entry.Metadata["source"] != "chat" {
		t.Errorf("Expected metadata to round-trip, got %v", rr.Entry.Metadata)
	}
}

func TestLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "retry", Value: "v1"}); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if _, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "other", Value: "x"}); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	wr, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "retry", Value: "v2"})
	if err != nil {
		t.Fatalf("third Write failed: %v", err)
	}
	if wr.Created {
		t.Errorf("Expected upsert of existing key to not report Created")
	}

	rr, err := s.Read(ctx, ReadRequest{Category: "patterns"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(rr.Entries) != 2 {
		t.Fatalf("Expected exactly 2 entries, got %d", len(rr.Entries))
	}
	// Upsert preserves position: "retry" stays first.
	if rr.Entries[0].Key != "retry" || rr.Entries[0].Value != "v2" {
		t.Errorf("Expected retry=v2 in place at position 0, got %+v", rr.Entries[0])
	}
}

func TestReadMissingCategoryFile(t *testing.T) {
	s := newTestStore(t)

	rr, err := s.Read(context.Background(), ReadRequest{Category: "decisions"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !rr.Success || len(rr.Entries) != 0 {
		t.Errorf("Expected empty successful read of untouched category, got %+v", rr)
	}
}

func TestLegacyBareListDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	legacy := `[{"key":"old","value":"legacy value","timestamp":"2025-01-01T00:00:00Z"}]`
	path := filepath.Join(s.Dir(), "project-context.json")
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rr, err := s.Read(ctx, ReadRequest{Category: "project-context", Key: "old"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rr.Entry == nil || rr.Entry.Value != "legacy value" {
		t.Fatalf("Expected legacy entry to be readable, got %+v", rr.Entry)
	}

	// A mutation normalizes the document to the versioned shape.
	if _, err := s.Write(ctx, WriteRequest{Category: "project-context", Key: "new", Value: "v"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var doc struct {
		Version int     `json:"version"`
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("Expected versioned document shape after persist: %v", err)
	}
	if doc.Version != 1 || len(doc.Entries) != 2 {
		t.Errorf("Expected version 1 with 2 entries, got version %d, %d entries", doc.Version, len(doc.Entries))
	}
}

func TestCorruptDocumentDegradesToEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(s.Dir(), "patterns.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rr, err := s.Read(ctx, ReadRequest{Category: "patterns"})
	if err != nil {
		t.Fatalf("Read over corrupt document should not error: %v", err)
	}
	if !rr.Success || len(rr.Entries) != 0 {
		t.Errorf("Expected empty successful read over corrupt document, got %+v", rr)
	}

	lr, err := s.List(ctx, ListRequest{Category: "patterns"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !lr.Categories[0].Corrupt {
		t.Errorf("Expected List to surface the corrupt flag")
	}
}

func TestUpdatedTimestampMonotonic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newTestStore(t, withClock(clock))
	ctx := context.Background()

	if _, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "a", Value: "1"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	first := readUpdated(t, s, "patterns")

	// Clock moving backwards must not regress the document timestamp.
	now = now.Add(-time.Hour)
	if _, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "b", Value: "2"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	second := readUpdated(t, s, "patterns")

	if second.Before(first) {
		t.Errorf("Expected updated to be monotonically non-decreasing, got %s then %s", first, second)
	}
}

func readUpdated(t *testing.T, s *Store, category string) time.Time {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(s.Dir(), category+".json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc.Updated == nil {
		t.Fatalf("Expected updated to be set after persist")
	}
	return *doc.Updated
}

func TestConcurrentWritersSameCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Write(ctx, WriteRequest{
				Category: "user-preferences",
				Key:      fmt.Sprintf("key-%d", i),
				Value:    "v",
			})
			if err != nil {
				t.Errorf("concurrent Write failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	rr, err := s.Read(ctx, ReadRequest{Category: "user-preferences"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(rr.Entries) != 20 {
		t.Errorf("Expected all 20 concurrent writes to land, got %d entries", len(rr.Entries))
	}

	// The final document must still parse as valid JSON.
	b, err := os.ReadFile(filepath.Join(s.Dir(), "user-preferences.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("Final document does not parse: %v", err)
	}
}

func TestLockContentionIsSoftFailure(t *testing.T) {
	ml := lock.NewMemLock(100 * time.Millisecond)
	s, err := New(t.TempDir(), WithLocker(ml))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	guard, err := ml.Acquire(ctx, s.lockPath(CategoryPatterns))
	if err != nil {
		t.Fatalf("pre-acquire failed: %v", err)
	}

	wr, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "k", Value: "v"})
	if err != nil {
		t.Fatalf("Contended write must degrade to a soft result, got error: %v", err)
	}
	if wr.Success || wr.Saved {
		t.Errorf("Expected unsuccessful, unsaved result under contention, got %+v", wr)
	}
	if wr.Message == "" {
		t.Errorf("Expected a retry hint in the message")
	}

	if err := guard.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	wr, err = s.Write(ctx, WriteRequest{Category: "patterns", Key: "k", Value: "v"})
	if err != nil || !wr.Saved {
		t.Fatalf("Expected write to succeed once the lock is free, got %+v, %v", wr, err)
	}
}

func TestUnknownCategoryIsHardError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Write(ctx, WriteRequest{Category: "nonsense", Key: "k", Value: "v"})
	if err == nil {
		t.Fatalf("Expected hard error for unknown category")
	}

	_, err = s.Read(ctx, ReadRequest{Category: "nonsense"})
	if err == nil {
		t.Fatalf("Expected hard error for unknown category on read")
	}
}

func TestEmptyKeyAndValueRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Write(ctx, WriteRequest{Category: "patterns", Value: "v"}); err == nil {
		t.Errorf("Expected error for empty key")
	}
	if _, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "k"}); err == nil {
		t.Errorf("Expected error for empty value")
	}
}
