package memory

import (
	"context"
)

// ReadRequest selects entries to return. Category and Key are both
// optional; the combination picks the result shape.
type ReadRequest struct {
	Category string `json:"category,omitempty"`
	Key      string `json:"key,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ReadResult carries one of four shapes depending on the request:
// category+key fills Entry, category alone fills Entries, key alone
// fills Matches (category → entry), neither fills All.
type ReadResult struct {
	Status
	Entry   *Entry               `json:"entry,omitempty"`
	Entries []Entry              `json:"entries,omitempty"`
	Matches map[Category]Entry   `json:"matches,omitempty"`
	All     map[Category][]Entry `json:"all,omitempty"`
}

// Read returns stored entries. It never mutates anything; a missing
// key is a soft "not found", not an error.
func (s *Store) Read(ctx context.Context, req ReadRequest) (ReadResult, error) {
	switch {
	case req.Category != "" && req.Key != "":
		return s.readEntry(ctx, req)
	case req.Category != "":
		return s.readCategory(ctx, req)
	case req.Key != "":
		return s.readKeyAcross(ctx, req)
	default:
		return s.readAll(ctx, req)
	}
}

func (s *Store) readEntry(ctx context.Context, req ReadRequest) (ReadResult, error) {
	c, err := ParseCategory(req.Category)
	if err != nil {
		return ReadResult{}, err
	}
	doc, _, err := s.loadDocument(ctx, c)
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return ReadResult{Status: st}, nil
		}
		return ReadResult{}, err
	}
	entry := doc.find(req.Key)
	if entry == nil {
		return ReadResult{Status: soft("no entry %q in %s", req.Key, c)}, nil
	}
	e := *entry
	return ReadResult{Status: ok("found %q in %s", req.Key, c), Entry: &e}, nil
}

func (s *Store) readCategory(ctx context.Context, req ReadRequest) (ReadResult, error) {
	c, err := ParseCategory(req.Category)
	if err != nil {
		return ReadResult{}, err
	}
	doc, _, err := s.loadDocument(ctx, c)
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return ReadResult{Status: st}, nil
		}
		return ReadResult{}, err
	}
	entries := limitEntries(doc.Entries, req.Limit)
	return ReadResult{
		Status:  ok("%d entries in %s", len(entries), c),
		Entries: entries,
	}, nil
}

func (s *Store) readKeyAcross(ctx context.Context, req ReadRequest) (ReadResult, error) {
	docs, err := s.snapshot(ctx, Categories())
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return ReadResult{Status: st}, nil
		}
		return ReadResult{}, err
	}
	matches := make(map[Category]Entry)
	for c, doc := range docs {
		if e := doc.find(req.Key); e != nil {
			matches[c] = *e
		}
	}
	if len(matches) == 0 {
		return ReadResult{Status: soft("no entry %q in any category", req.Key)}, nil
	}
	return ReadResult{
		Status:  ok("found %q in %d categories", req.Key, len(matches)),
		Matches: matches,
	}, nil
}

func (s *Store) readAll(ctx context.Context, req ReadRequest) (ReadResult, error) {
	docs, err := s.snapshot(ctx, Categories())
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return ReadResult{Status: st}, nil
		}
		return ReadResult{}, err
	}
	all := make(map[Category][]Entry, len(docs))
	total := 0
	for _, c := range Categories() {
		entries := limitEntries(docs[c].Entries, req.Limit)
		all[c] = entries
		total += len(entries)
	}
	return ReadResult{Status: ok("%d entries across %d categories", total, len(all)), All: all}, nil
}

// limitEntries copies entries, capped at limit when positive.
func limitEntries(entries []Entry, limit int) []Entry {
	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, n)
	copy(out, entries[:n])
	return out
}
