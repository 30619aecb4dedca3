package chatbox

import (
	"strings"

	"github.com/cdfmlr/ellipsis"
)

// Message limits. VRChat renders at most 144 characters per chatbox line;
// the queue size keeps stale status from piling up behind the rate limit.
const (
	MaxMessageLength = 144
	MaxQueueSize     = 10
)

// Validate sanitizes a chatbox line:
//
//   - rejects empty / all-whitespace input;
//   - collapses whitespace runs (including newlines) to single spaces;
//   - strips NUL and CR unconditionally;
//   - truncates to MaxMessageLength runes, ending truncated text with "...".
//
// Pure function: no queue state involved.
func Validate(text string) (string, bool) {
	return validateMax(text, MaxMessageLength)
}

func validateMax(text string, maxLen int) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r", "")

	return ellipsis.Ending(text, maxLen), true
}
