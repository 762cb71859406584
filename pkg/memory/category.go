package memory

import "fmt"

// Policy governs whether a mutating call on a category proceeds,
// requires confirmation, or is rejected.
type Policy string

const (
	PolicyAutoSave        Policy = "auto-save"
	PolicyConfirmRequired Policy = "confirm-required"
	PolicyReadOnly        Policy = "read-only"
)

// Category is a named partition of the store, backed by one document
// on disk. The set of categories is closed; unknown names are a hard
// error on every operation.
type Category string

const (
	CategoryUserPreferences Category = "user-preferences"
	CategoryProjectContext  Category = "project-context"
	CategoryPatterns        Category = "patterns"
	CategoryDecisions       Category = "decisions"
	CategoryCorrections     Category = "corrections"
	CategoryProtocolState   Category = "protocol-state"
)

// categoryOrder is the canonical enumeration order, used everywhere a
// deterministic category ordering is needed (iteration, rendering,
// search tie-breaking).
var categoryOrder = []Category{
	CategoryUserPreferences,
	CategoryProjectContext,
	CategoryPatterns,
	CategoryDecisions,
	CategoryCorrections,
	CategoryProtocolState,
}

var categoryPolicies = map[Category]Policy{
	CategoryUserPreferences: PolicyAutoSave,
	CategoryProjectContext:  PolicyAutoSave,
	CategoryPatterns:        PolicyAutoSave,
	CategoryDecisions:       PolicyConfirmRequired,
	CategoryCorrections:     PolicyConfirmRequired,
	CategoryProtocolState:   PolicyReadOnly,
}

// Categories returns all categories in canonical order. The returned
// slice is a copy and safe to modify.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Policy returns the write policy bound to the category. Unknown
// categories report PolicyReadOnly, the safest answer, though every
// public entry point rejects them before policy is consulted.
func (c Category) Policy() Policy {
	if p, ok := categoryPolicies[c]; ok {
		return p
	}
	return PolicyReadOnly
}

// rank returns the category's position in canonical order, for sort
// tie-breaking.
func (c Category) rank() int {
	for i, o := range categoryOrder {
		if o == c {
			return i
		}
	}
	return len(categoryOrder)
}

// ParseCategory validates a category name against the closed set.
func ParseCategory(name string) (Category, error) {
	c := Category(name)
	if _, ok := categoryPolicies[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// resolveCategories expands an optional caller-supplied category list:
// empty input selects all categories; otherwise each name is validated.
func resolveCategories(names []string) ([]Category, error) {
	if len(names) == 0 {
		return Categories(), nil
	}
	seen := make(map[Category]bool, len(names))
	var out []Category
	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}
