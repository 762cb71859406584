package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCorpus(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	writes := []WriteRequest{
		{Category: "user-preferences", Key: "typescript-config", Value: "strict mode always on"},
		{Category: "user-preferences", Key: "editor", Value: "neovim with LSP"},
		{Category: "project-context", Key: "language", Value: "the backend is written in TypeScript"},
		{Category: "patterns", Key: "retry-backoff", Value: "exponential backoff with jitter"},
		{Category: "decisions", Key: "db-choice", Value: "Postgres over MySQL", Reason: "team familiarity", Confirm: true},
	}
	for _, w := range writes {
		_, err := s.Write(ctx, w)
		require.NoError(t, err)
	}
}

func TestSearchExactMode(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	sr, err := s.Search(context.Background(), SearchRequest{Query: "typescript", Exact: true})
	require.NoError(t, err)
	require.True(t, sr.Success)

	var keys []string
	for _, m := range sr.Results {
		keys = append(keys, m.Entry.Key)
		assert.Equal(t, 1.0, m.Score, "exact hits score 1.0")
	}
	assert.Contains(t, keys, "typescript-config")
	assert.Contains(t, keys, "language")
	assert.NotContains(t, keys, "retry-backoff")
}

func TestSearchExactSubsetOfFuzzy(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)
	ctx := context.Background()

	queries := []string{"typescript", "backoff", "postgres", "neovim"}
	for _, q := range queries {
		exact, err := s.Search(ctx, SearchRequest{Query: q, Exact: true})
		require.NoError(t, err)
		fuzzy, err := s.Search(ctx, SearchRequest{Query: q})
		require.NoError(t, err)

		fuzzyKeys := make(map[string]bool)
		for _, m := range fuzzy.Results {
			fuzzyKeys[string(m.Category)+"/"+m.Entry.Key] = true
		}
		for _, m := range exact.Results {
			assert.True(t, fuzzyKeys[string(m.Category)+"/"+m.Entry.Key],
				"exact hit %s/%s for %q missing from fuzzy results", m.Category, m.Entry.Key, q)
		}
	}
}

func TestSearchFuzzyMatchesTypo(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	// "typescrpt" is one edit away from the token "typescript".
	sr, err := s.Search(context.Background(), SearchRequest{Query: "typescrpt"})
	require.NoError(t, err)
	require.True(t, sr.Success, "fuzzy search should tolerate a single-character typo")

	var keys []string
	for _, m := range sr.Results {
		keys = append(keys, m.Entry.Key)
		assert.GreaterOrEqual(t, m.Score, s.minScore)
		assert.Less(t, m.Score, 1.0, "typo match should not score as containment")
	}
	assert.Contains(t, keys, "typescript-config")
}

func TestSearchRankingDeterministic(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newTestStore(t, withClock(clock))
	ctx := context.Background()

	_, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: "older", Value: "alpha match"})
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = s.Write(ctx, WriteRequest{Category: "user-preferences", Key: "newer", Value: "alpha match"})
	require.NoError(t, err)

	sr, err := s.Search(ctx, SearchRequest{Query: "alpha", Exact: true})
	require.NoError(t, err)
	require.Len(t, sr.Results, 2)

	// Equal scores: newer timestamp wins.
	assert.Equal(t, "newer", sr.Results[0].Entry.Key)
	assert.Equal(t, "older", sr.Results[1].Entry.Key)
}

func TestSearchLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		_, err := s.Write(ctx, WriteRequest{Category: "patterns", Key: key, Value: "common value"})
		require.NoError(t, err)
	}

	sr, err := s.Search(ctx, SearchRequest{Query: "common", Exact: true, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, sr.Results, 3)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), SearchRequest{Query: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyQuery))
}

func TestSearchCategoryScope(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	sr, err := s.Search(context.Background(), SearchRequest{
		Query:      "typescript",
		Exact:      true,
		Categories: []string{"project-context"},
	})
	require.NoError(t, err)
	for _, m := range sr.Results {
		assert.Equal(t, CategoryProjectContext, m.Category)
	}

	_, err = s.Search(context.Background(), SearchRequest{Query: "x", Categories: []string{"bogus"}})
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestFieldSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		field   string
		wantMin float64
		wantMax float64
	}{
		{"containment", "type", "typescript-config", 1.0, 1.0},
		{"case insensitive", "TYPE", "typescript", 1.0, 1.0},
		{"near token", "typescrpt", "strict typescript build", 0.8, 0.99},
		{"unrelated", "zebra", "exponential backoff", 0.0, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldSimilarity(tt.query, tt.field)
			assert.GreaterOrEqual(t, got, tt.wantMin)
			assert.LessOrEqual(t, got, tt.wantMax)
		})
	}
}
