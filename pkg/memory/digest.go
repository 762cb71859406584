package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DigestRequest configures a markdown briefing of the store, suitable
// for injection into an agent prompt. Budget is in tokens; zero uses
// the store default. Categories is an optional scope.
type DigestRequest struct {
	Categories []string `json:"categories,omitempty"`
	Budget     int      `json:"budget,omitempty"`
}

// DigestResult carries the rendered briefing.
type DigestResult struct {
	Status
	Markdown  string `json:"markdown"`
	Tokens    int    `json:"tokens"`
	Truncated bool   `json:"truncated"`
}

const digestEncoding = "cl100k_base"

// Digest renders categories in canonical order with entries newest
// first, stopping when the token budget would be exceeded. It is a
// pure read.
func (s *Store) Digest(ctx context.Context, req DigestRequest) (DigestResult, error) {
	cats, err := resolveCategories(req.Categories)
	if err != nil {
		return DigestResult{}, err
	}
	budget := req.Budget
	if budget <= 0 {
		budget = s.digestBudget
	}

	docs, err := s.snapshot(ctx, cats)
	if err != nil {
		if st, isLock := lockStatus(err); isLock {
			return DigestResult{Status: st}, nil
		}
		return DigestResult{}, err
	}

	count := s.tokenCounter()

	var sb strings.Builder
	sb.WriteString("## Stored Memory\n\n")
	used := count(sb.String())
	truncated := false

	for _, c := range cats {
		entries := docs[c].Entries
		if len(entries) == 0 {
			continue
		}
		sorted := make([]Entry, len(entries))
		copy(sorted, entries)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
		})

		section := fmt.Sprintf("### %s\n", c)
		for _, e := range sorted {
			line := fmt.Sprintf("- **%s**: %s", e.Key, flattenValue(e.Value))
			if e.Reason != "" {
				line += fmt.Sprintf(" _(%s)_", flattenValue(e.Reason))
			}
			section += line + "\n"
		}
		section += "\n"

		cost := count(section)
		if used+cost > budget {
			truncated = true
			break
		}
		sb.WriteString(section)
		used += cost
	}

	markdown := sb.String()
	if markdown == "## Stored Memory\n\n" {
		// Nothing fit, or nothing stored.
		markdown = ""
		used = 0
	}

	return DigestResult{
		Status:    ok("digest rendered with %d tokens", used),
		Markdown:  markdown,
		Tokens:    used,
		Truncated: truncated,
	}, nil
}

// tokenCounter returns a token-counting function backed by the
// cl100k_base encoding, falling back to a bytes/4 estimate when the
// encoding cannot be loaded (e.g. no network for the BPE download).
func (s *Store) tokenCounter() func(string) int {
	enc, err := tiktoken.GetEncoding(digestEncoding)
	if err != nil {
		s.logger.Debug("tiktoken encoding unavailable, estimating tokens", "err", err)
		return func(text string) int {
			return len(text)/4 + 1
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}
