package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// ListRequest selects categories and entries to summarize. KeyGlob is
// an optional glob pattern over keys (e.g. "db-*").
type ListRequest struct {
	Category          string `json:"category,omitempty"`
	KeyGlob           string `json:"key_glob,omitempty"`
	IncludeTimestamps bool   `json:"include_timestamps,omitempty"`
	PreviewWidth      int    `json:"preview_width,omitempty"`
}

// EntryPreview is one row of a listing: the key, a truncated value
// preview, and the timestamp when requested.
type EntryPreview struct {
	Key       string     `json:"key"`
	Preview   string     `json:"preview"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// CategoryListing summarizes one category. Corrupt is set when the
// document on disk failed to parse and an empty view is being served.
type CategoryListing struct {
	Category Category       `json:"category"`
	Policy   Policy         `json:"policy"`
	Count    int            `json:"count"`
	Corrupt  bool           `json:"corrupt,omitempty"`
	Updated  *time.Time     `json:"updated,omitempty"`
	Entries  []EntryPreview `json:"entries"`
}

// ListResult carries per-category listings in canonical order. Empty
// categories are included with count 0.
type ListResult struct {
	Status
	Categories []CategoryListing `json:"data"`
}

// List produces a read-only summary of one category or all of them.
func (s *Store) List(ctx context.Context, req ListRequest) (ListResult, error) {
	var cats []Category
	if req.Category != "" {
		c, err := ParseCategory(req.Category)
		if err != nil {
			return ListResult{}, err
		}
		cats = []Category{c}
	} else {
		cats = Categories()
	}

	var matcher glob.Glob
	if req.KeyGlob != "" {
		g, err := glob.Compile(req.KeyGlob)
		if err != nil {
			return ListResult{}, fmt.Errorf("memory: invalid key glob %q: %w", req.KeyGlob, err)
		}
		matcher = g
	}

	width := req.PreviewWidth
	if width <= 0 {
		width = s.previewWidth
	}

	listings := make([]CategoryListing, 0, len(cats))
	total := 0
	for _, c := range cats {
		doc, corrupt, err := s.loadDocument(ctx, c)
		if err != nil {
			if st, isLock := lockStatus(err); isLock {
				return ListResult{Status: st}, nil
			}
			return ListResult{}, err
		}

		listing := CategoryListing{
			Category: c,
			Policy:   c.Policy(),
			Corrupt:  corrupt,
			Updated:  doc.Updated,
			Entries:  []EntryPreview{},
		}
		for _, e := range doc.Entries {
			if matcher != nil && !matcher.Match(e.Key) {
				continue
			}
			preview := EntryPreview{
				Key:     e.Key,
				Preview: truncateValue(flattenValue(e.Value), width),
			}
			if req.IncludeTimestamps {
				ts := e.UpdatedAt
				preview.Timestamp = &ts
			}
			listing.Entries = append(listing.Entries, preview)
		}
		listing.Count = len(listing.Entries)
		total += listing.Count
		listings = append(listings, listing)
	}

	return ListResult{
		Status:     ok("%d entries across %d categories", total, len(listings)),
		Categories: listings,
	}, nil
}

// flattenValue folds newlines so previews stay single-line.
func flattenValue(v string) string {
	out := []rune(v)
	for i, r := range out {
		if r == '\n' || r == '\r' || r == '\t' {
			out[i] = ' '
		}
	}
	return string(out)
}
