package memory

import (
	"encoding/json"
	"fmt"
)

// parseDocument decodes a persisted category document. Two shapes are
// accepted: the current versioned object, and a legacy bare list of
// entries (normalized to the current shape on the next persist). A
// payload that matches neither is reported via the corrupt flag; the
// caller decides whether to degrade or overwrite. Unknown fields are
// ignored.
func parseDocument(b []byte) (doc *Document, corrupt bool) {
	var current Document
	if err := json.Unmarshal(b, &current); err == nil {
		if current.Version == 0 {
			current.Version = documentVersion
		}
		if current.Entries == nil {
			current.Entries = []Entry{}
		}
		return &current, false
	}

	var legacy []Entry
	if err := json.Unmarshal(b, &legacy); err == nil {
		if legacy == nil {
			legacy = []Entry{}
		}
		return &Document{Version: documentVersion, Entries: legacy}, false
	}

	return newDocument(), true
}

// serializeDocument encodes a document in the current shape, indented
// for hand inspection of the store directory.
func serializeDocument(doc *Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("memory: serialize document: %w", err)
	}
	return append(b, '\n'), nil
}
