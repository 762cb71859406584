package memory

import (
	"context"
)

// WriteRequest asks for an upsert of one entry.
type WriteRequest struct {
	Category string                 `json:"category"`
	Key      string                 `json:"key"`
	Value    string                 `json:"value"`
	Reason   string                 `json:"reason,omitempty"`
	Context  string                 `json:"context,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Confirm  bool                   `json:"confirm,omitempty"`
}

// WriteResult reports the outcome of a write. RequiresPermission is
// set when the category's policy demands a confirmed second call; the
// Message then summarizes what would be written.
type WriteResult struct {
	Status
	RequiresPermission bool   `json:"requires_permission"`
	Saved              bool   `json:"saved"`
	Created            bool   `json:"created,omitempty"`
	Entry              *Entry `json:"entry,omitempty"`
}

// Write upserts an entry subject to the category's policy: AutoSave
// applies immediately, ConfirmRequired needs Confirm set, ReadOnly is
// always rejected. The unconfirmed call on a ConfirmRequired category
// never mutates storage; it reads the current entry (if any) to render
// the confirmation summary.
func (s *Store) Write(ctx context.Context, req WriteRequest) (WriteResult, error) {
	c, err := ParseCategory(req.Category)
	if err != nil {
		return WriteResult{}, err
	}
	if req.Key == "" {
		return WriteResult{}, ErrEmptyKey
	}
	if req.Value == "" {
		return WriteResult{}, ErrEmptyValue
	}

	switch c.Policy() {
	case PolicyReadOnly:
		return WriteResult{
			Status: soft("category %q is read-only; writes are not permitted", c),
		}, nil

	case PolicyConfirmRequired:
		if !req.Confirm {
			return s.writeConfirmation(ctx, c, req)
		}
	}

	entry := Entry{
		Key:       req.Key,
		Value:     req.Value,
		Reason:    req.Reason,
		Context:   req.Context,
		Metadata:  req.Metadata,
		UpdatedAt: s.now().UTC(),
	}

	var created bool
	err = s.mutateDocument(ctx, c, func(doc *Document) (bool, error) {
		created = doc.upsert(entry)
		return true, nil
	})
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return WriteResult{Status: st}, nil
		}
		return WriteResult{}, err
	}

	verb := "updated"
	if created {
		verb = "saved"
	}
	return WriteResult{
		Status:  ok("%s %q in %s", verb, req.Key, c),
		Saved:   true,
		Created: created,
		Entry:   &entry,
	}, nil
}

// writeConfirmation renders the pending-confirmation summary for a
// ConfirmRequired category without touching the document.
func (s *Store) writeConfirmation(ctx context.Context, c Category, req WriteRequest) (WriteResult, error) {
	doc, _, err := s.loadDocument(ctx, c)
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return WriteResult{Status: st}, nil
		}
		return WriteResult{}, err
	}

	msg := "category %q requires confirmation: would save %q = %q"
	args := []interface{}{c, req.Key, truncateValue(req.Value, s.previewWidth)}
	if existing := doc.find(req.Key); existing != nil {
		msg = "category %q requires confirmation: would replace %q (currently %q) with %q"
		args = []interface{}{c, req.Key,
			truncateValue(existing.Value, s.previewWidth),
			truncateValue(req.Value, s.previewWidth)}
	}
	if req.Reason != "" {
		msg += " (reason: %s)"
		args = append(args, req.Reason)
	}
	msg += "; repeat with confirm to apply"

	return WriteResult{
		Status:             soft(msg, args...),
		RequiresPermission: true,
	}, nil
}
