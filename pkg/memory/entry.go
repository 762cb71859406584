package memory

import (
	"time"
)

// Entry is a single key/value memory record. Key is unique within a
// category; uniqueness is enforced by upsert, not by an index.
type Entry struct {
	Key       string                 `json:"key"`
	Value     string                 `json:"value"`
	Reason    string                 `json:"reason,omitempty"`
	Context   string                 `json:"context,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	UpdatedAt time.Time              `json:"timestamp"`
}

// Document is the persisted shape of one category: an ordered list of
// entries plus the time of the last successful persist. Ordering is
// insertion order; upsert replaces in place.
type Document struct {
	Version int        `json:"version"`
	Entries []Entry    `json:"entries"`
	Updated *time.Time `json:"updated"`
}

const documentVersion = 1

func newDocument() *Document {
	return &Document{Version: documentVersion, Entries: []Entry{}}
}

// find returns a pointer to the entry with the given key, or nil.
func (d *Document) find(key string) *Entry {
	for i := range d.Entries {
		if d.Entries[i].Key == key {
			return &d.Entries[i]
		}
	}
	return nil
}

// upsert applies last-write-wins semantics: a matching key is updated
// in place, preserving its position; a new key appends. Returns true
// when a new entry was created.
func (d *Document) upsert(e Entry) bool {
	if existing := d.find(e.Key); existing != nil {
		*existing = e
		return false
	}
	d.Entries = append(d.Entries, e)
	return true
}

// removeByKey removes the entry with the given key, preserving the
// relative order of the rest. An absent key is not an error.
func (d *Document) removeByKey(key string) bool {
	for i := range d.Entries {
		if d.Entries[i].Key == key {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
			return true
		}
	}
	return false
}
