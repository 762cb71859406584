package memory

import (
	"context"
	"errors"
	"os"
	"time"
)

// CategoryStats summarizes one category's document.
type CategoryStats struct {
	Category Category   `json:"category"`
	Policy   Policy     `json:"policy"`
	Count    int        `json:"count"`
	Bytes    int64      `json:"bytes"`
	Oldest   *time.Time `json:"oldest,omitempty"`
	Newest   *time.Time `json:"newest,omitempty"`
}

// StatsResult aggregates per-category stats in canonical order.
type StatsResult struct {
	Status
	Categories   []CategoryStats `json:"categories"`
	TotalEntries int             `json:"total_entries"`
	TotalBytes   int64           `json:"total_bytes"`
}

// Stats reports entry counts, timestamp ranges, and on-disk sizes.
func (s *Store) Stats(ctx context.Context) (StatsResult, error) {
	result := StatsResult{Categories: make([]CategoryStats, 0, len(categoryOrder))}

	for _, c := range Categories() {
		doc, _, err := s.loadDocument(ctx, c)
		if err != nil {
			if st, isLock := lockStatus(err); isLock {
				return StatsResult{Status: st}, nil
			}
			return StatsResult{}, err
		}

		cs := CategoryStats{Category: c, Policy: c.Policy(), Count: len(doc.Entries)}
		for i := range doc.Entries {
			at := doc.Entries[i].UpdatedAt
			if cs.Oldest == nil || at.Before(*cs.Oldest) {
				t := at
				cs.Oldest = &t
			}
			if cs.Newest == nil || at.After(*cs.Newest) {
				t := at
				cs.Newest = &t
			}
		}
		if info, err := os.Stat(s.docPath(c)); err == nil {
			cs.Bytes = info.Size()
		} else if !errors.Is(err, os.ErrNotExist) {
			return StatsResult{}, err
		}

		result.TotalEntries += cs.Count
		result.TotalBytes += cs.Bytes
		result.Categories = append(result.Categories, cs)
	}

	result.Status = ok("%d entries, %d bytes across %d categories",
		result.TotalEntries, result.TotalBytes, len(result.Categories))
	return result, nil
}
