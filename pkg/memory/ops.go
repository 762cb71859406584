package memory

import (
	"errors"
	"fmt"

	"github.com/entrhq/recall/pkg/memory/lock"
)

// Status is the shared result envelope. Success=false covers soft
// outcomes: policy rejections, missing keys, lock exhaustion. Message
// is always renderable as-is.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(format string, args ...interface{}) Status {
	return Status{Success: true, Message: fmt.Sprintf(format, args...)}
}

func soft(format string, args ...interface{}) Status {
	return Status{Success: false, Message: fmt.Sprintf(format, args...)}
}

// lockStatus converts a lock-exhaustion error into the soft result the
// operation surface promises. Any other error stays hard.
func lockStatus(err error) (Status, bool) {
	if errors.Is(err, lock.ErrNotAcquired) {
		return soft("memory store is busy: %v; operation not completed, retry later", err), true
	}
	return Status{}, false
}

// truncateValue shortens a value for previews, appending an ellipsis
// when it was cut. Width is in runes.
func truncateValue(v string, width int) string {
	if width <= 0 {
		width = DefaultPreviewWidth
	}
	runes := []rune(v)
	if len(runes) <= width {
		return v
	}
	return string(runes[:width]) + "…"
}
