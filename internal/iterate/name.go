package iterate

import (
	"fmt"
	"regexp"
)

var kebabRunPattern = regexp.MustCompile(`[a-z0-9-]+`)

// SanitizeName recovers a kebab-case iteration slug from the assistant's
// name-stage response: the first contiguous run of [a-z0-9-]+,
// truncated to 50 characters. An empty match falls back to
// "assessment-<nowMillis>".
//
// This intentionally matches the first lowercase run verbatim, not the
// first whole word: on input "The name is fix-auth" it yields "he" (from
// "The"), not "fix-auth". Do not improve this to word-boundary matching
// — callers depend on the exact behavior.
func SanitizeName(raw string, nowMillis int64) string {
	match := kebabRunPattern.FindString(raw)
	if match == "" {
		return fmt.Sprintf("assessment-%d", nowMillis)
	}
	if len(match) > 50 {
		match = match[:50]
	}
	return match
}
