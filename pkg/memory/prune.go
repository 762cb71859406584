package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gobwas/glob"
)

// PruneRequest describes a retention pass. At least one of MaxAgeDays
// or MaxEntries must be set. Category limits the scope (empty means
// all); KeyGlob limits which entries are considered.
type PruneRequest struct {
	Category   string `json:"category,omitempty"`
	KeyGlob    string `json:"key_glob,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	MaxEntries int    `json:"max_entries,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
	Confirm    bool   `json:"confirm,omitempty"`
}

// PruneResult reports, per category, the entries removed — or, in dry
// run, the entries that would be removed. Skipped lists read-only
// categories excluded from pruning.
type PruneResult struct {
	Status
	DryRun               bool                  `json:"dry_run"`
	RequiresConfirmation bool                  `json:"requires_confirmation"`
	Pruned               map[Category]int      `json:"pruned"`
	RemovedKeys          map[Category][]string `json:"removed_keys,omitempty"`
	Skipped              []Category            `json:"skipped,omitempty"`
	Total                int                   `json:"total"`
}

// Prune removes entries older than MaxAgeDays and/or beyond the
// MaxEntries most recent, per category. DryRun computes counts without
// mutating anything and needs no confirmation; the destructive path
// requires Confirm regardless of category policy, pruning being a
// retention operation rather than a policy-governed write. ReadOnly
// categories are never pruned. Each category commits independently;
// there is no cross-category transaction.
func (s *Store) Prune(ctx context.Context, req PruneRequest) (PruneResult, error) {
	if req.MaxAgeDays <= 0 && req.MaxEntries <= 0 {
		return PruneResult{}, ErrNoCriteria
	}

	var cats []Category
	if req.Category != "" {
		c, err := ParseCategory(req.Category)
		if err != nil {
			return PruneResult{}, err
		}
		cats = []Category{c}
	} else {
		cats = Categories()
	}

	var matcher glob.Glob
	if req.KeyGlob != "" {
		g, err := glob.Compile(req.KeyGlob)
		if err != nil {
			return PruneResult{}, fmt.Errorf("memory: invalid key glob %q: %w", req.KeyGlob, err)
		}
		matcher = g
	}

	result := PruneResult{
		DryRun:      req.DryRun,
		Pruned:      make(map[Category]int),
		RemovedKeys: make(map[Category][]string),
	}
	now := s.now().UTC()

	for _, c := range cats {
		if c.Policy() == PolicyReadOnly {
			result.Skipped = append(result.Skipped, c)
			continue
		}

		if req.DryRun || !req.Confirm {
			doc, _, err := s.loadDocument(ctx, c)
			if err != nil {
				if st, isLock := lockStatus(err); isLock {
					return PruneResult{Status: st}, nil
				}
				return PruneResult{}, err
			}
			keys := prunePlan(doc, now, req.MaxAgeDays, req.MaxEntries, matcher)
			result.Pruned[c] = len(keys)
			result.RemovedKeys[c] = keys
			result.Total += len(keys)
			continue
		}

		// Destructive path: recompute the plan under the lock so the
		// removal set reflects the document actually on disk.
		var keys []string
		err := s.mutateDocument(ctx, c, func(doc *Document) (bool, error) {
			keys = prunePlan(doc, now, req.MaxAgeDays, req.MaxEntries, matcher)
			for _, k := range keys {
				doc.removeByKey(k)
			}
			return len(keys) > 0, nil
		})
		if err != nil {
			if st, isLock := lockStatus(err); isLock {
				// Earlier categories may already have committed; report
				// what happened rather than pretending atomicity.
				result.Status = st
				return result, nil
			}
			return PruneResult{}, err
		}
		result.Pruned[c] = len(keys)
		result.RemovedKeys[c] = keys
		result.Total += len(keys)
	}

	if !req.DryRun && !req.Confirm {
		result.RequiresConfirmation = true
		result.Status = soft("pruning requires confirmation: %d entries would be removed; repeat with confirm to apply", result.Total)
		return result, nil
	}

	verb := "pruned"
	if req.DryRun {
		verb = "would prune"
	}
	result.Status = ok("%s %d entries across %d categories", verb, result.Total, len(result.Pruned))
	return result, nil
}

// prunePlan computes which keys the criteria select for removal, in
// document order. The age criterion is applied first; the count
// criterion then keeps the MaxEntries newest of the survivors, ties
// broken by key ascending. A glob restricts both criteria to matching
// entries.
func prunePlan(doc *Document, now time.Time, maxAgeDays, maxEntries int, matcher glob.Glob) []string {
	type candidate struct {
		key string
		at  time.Time
	}
	var cands []candidate
	for _, e := range doc.Entries {
		if matcher != nil && !matcher.Match(e.Key) {
			continue
		}
		cands = append(cands, candidate{key: e.Key, at: e.UpdatedAt})
	}

	removed := make(map[string]bool)
	if maxAgeDays > 0 {
		cutoff := now.AddDate(0, 0, -maxAgeDays)
		for _, c := range cands {
			if c.at.Before(cutoff) {
				removed[c.key] = true
			}
		}
	}
	if maxEntries > 0 {
		var survivors []candidate
		for _, c := range cands {
			if !removed[c.key] {
				survivors = append(survivors, c)
			}
		}
		if len(survivors) > maxEntries {
			sort.SliceStable(survivors, func(i, j int) bool {
				if !survivors[i].at.Equal(survivors[j].at) {
					return survivors[i].at.After(survivors[j].at)
				}
				return survivors[i].key < survivors[j].key
			})
			for _, c := range survivors[maxEntries:] {
				removed[c.key] = true
			}
		}
	}

	// Report in document order for stable output.
	var keys []string
	for _, e := range doc.Entries {
		if removed[e.Key] {
			keys = append(keys, e.Key)
		}
	}
	return keys
}
