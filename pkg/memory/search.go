package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SearchRequest is a free-text query over the store. Categories is an
// optional scope (empty means all). Fuzzy defaults to on; Exact
// disables similarity scoring and keeps only substring hits. MinScore
// overrides the store's fuzzy threshold when in (0, 1].
type SearchRequest struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories,omitempty"`
	Exact      bool     `json:"exact,omitempty"`
	MinScore   float64  `json:"min_score,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// Match is one ranked search result.
type Match struct {
	Category Category `json:"category"`
	Entry    Entry    `json:"entry"`
	Score    float64  `json:"score"`
}

// SearchResult carries ranked matches, best first.
type SearchResult struct {
	Status
	Results []Match `json:"results"`
}

// Search ranks entries against a query. Exact mode is a strict subset
// of fuzzy mode: substring containment scores 1.0 in both, so every
// exact hit clears any fuzzy threshold at or below 1.
func (s *Store) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return SearchResult{}, ErrEmptyQuery
	}
	cats, err := resolveCategories(req.Categories)
	if err != nil {
		return SearchResult{}, err
	}

	minScore := s.minScore
	if req.MinScore > 0 && req.MinScore <= 1 {
		minScore = req.MinScore
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.searchLimit
	}

	docs, err := s.snapshot(ctx, cats)
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return SearchResult{Status: st}, nil
		}
		return SearchResult{}, err
	}

	var matches []Match
	for _, c := range cats {
		for _, e := range docs[c].Entries {
			score := scoreEntry(query, e, req.Exact)
			if req.Exact {
				if score < 1 {
					continue
				}
			} else if score < minScore {
				continue
			}
			matches = append(matches, Match{Category: c, Entry: e, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].Entry.UpdatedAt.Equal(matches[j].Entry.UpdatedAt) {
			return matches[i].Entry.UpdatedAt.After(matches[j].Entry.UpdatedAt)
		}
		if matches[i].Category != matches[j].Category {
			return matches[i].Category.rank() < matches[j].Category.rank()
		}
		return matches[i].Entry.Key < matches[j].Entry.Key
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	if len(matches) == 0 {
		return SearchResult{Status: soft("no matches for %q", query)}, nil
	}
	return SearchResult{
		Status:  ok("%d matches for %q", len(matches), query),
		Results: matches,
	}, nil
}

// scoreEntry computes the entry's score as the maximum across its
// searched fields (key, value, reason, context).
func scoreEntry(query string, e Entry, exact bool) float64 {
	best := 0.0
	for _, field := range []string{e.Key, e.Value, e.Reason, e.Context} {
		if field == "" {
			continue
		}
		var score float64
		if exact {
			score = exactScore(query, field)
		} else {
			score = fieldSimilarity(query, field)
		}
		if score > best {
			best = score
		}
		if best == 1 {
			break
		}
	}
	return best
}

func exactScore(query, field string) float64 {
	if strings.Contains(strings.ToLower(field), strings.ToLower(query)) {
		return 1
	}
	return 0
}

// fieldSimilarity scores one field in [0,1]. Case-insensitive
// containment short-circuits to 1.0, which also makes exact-mode hits
// a subset of fuzzy-mode hits. Otherwise the score is the best
// normalized Levenshtein similarity between the query and the whole
// field or any of its tokens.
func fieldSimilarity(query, field string) float64 {
	q := strings.ToLower(query)
	f := strings.ToLower(field)
	if strings.Contains(f, q) {
		return 1
	}

	best := similarity(q, f)
	for _, token := range tokenize(f) {
		if s := similarity(q, token); s > best {
			best = s
		}
	}
	return best
}

// similarity is 1 - editDistance/maxLen over runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(max)
}

// tokenize splits a field on non-alphanumeric runes.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		}
		return true
	})
}
