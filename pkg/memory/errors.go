package memory

import "errors"

// Hard errors signal caller bugs or unrecoverable I/O. Policy
// rejections, missing keys, and lock contention are soft results
// (success=false on the operation result), never Go errors.
var (
	ErrUnknownCategory = errors.New("memory: unknown category")
	ErrEmptyKey        = errors.New("memory: key must not be empty")
	ErrEmptyValue      = errors.New("memory: value must not be empty")
	ErrEmptyQuery      = errors.New("memory: search query must not be empty")
	ErrNoCriteria      = errors.New("memory: prune requires max age and/or max entries")
)
