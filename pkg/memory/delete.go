package memory

import (
	"context"
)

// DeleteRequest asks for removal of one entry.
type DeleteRequest struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	Confirm  bool   `json:"confirm,omitempty"`
}

// DeleteResult reports the outcome of a delete.
type DeleteResult struct {
	Status
	RequiresConfirmation bool `json:"requires_confirmation"`
	Deleted              bool `json:"deleted"`
}

// Delete removes an entry. Deletion requires confirmation from every
// category, including AutoSave ones — the category write policy only
// governs writes. ReadOnly categories reject deletion outright, never
// offering confirmation. Deleting an absent key is a soft "not found"
// and never rewrites the file.
func (s *Store) Delete(ctx context.Context, req DeleteRequest) (DeleteResult, error) {
	c, err := ParseCategory(req.Category)
	if err != nil {
		return DeleteResult{}, err
	}
	if req.Key == "" {
		return DeleteResult{}, ErrEmptyKey
	}

	if c.Policy() == PolicyReadOnly {
		return DeleteResult{
			Status: soft("category %q is read-only; entries cannot be deleted", c),
		}, nil
	}

	if !req.Confirm {
		doc, _, err := s.loadDocument(ctx, c)
		if err != nil {
			if st, isLock := lockStatus(err); isLock {
				return DeleteResult{Status: st}, nil
			}
			return DeleteResult{}, err
		}
		entry := doc.find(req.Key)
		if entry == nil {
			return DeleteResult{Status: soft("no entry %q in %s", req.Key, c)}, nil
		}
		return DeleteResult{
			Status: soft("deletion requires confirmation: would remove %q = %q from %s; repeat with confirm to apply",
				req.Key, truncateValue(entry.Value, s.previewWidth), c),
			RequiresConfirmation: true,
		}, nil
	}

	var found bool
	err = s.mutateDocument(ctx, c, func(doc *Document) (bool, error) {
		found = doc.removeByKey(req.Key)
		return found, nil
	})
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return DeleteResult{Status: st}, nil
		}
		return DeleteResult{}, err
	}
	if !found {
		return DeleteResult{Status: soft("no entry %q in %s", req.Key, c)}, nil
	}
	return DeleteResult{
		Status:  ok("deleted %q from %s", req.Key, c),
		Deleted: true,
	}, nil
}
