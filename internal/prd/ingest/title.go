package ingest

import (
	"regexp"
	"strings"
)

var (
	h1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	h2Pattern = regexp.MustCompile(`(?m)^##\s+(.+)$`)

	markdownExt = regexp.MustCompile(`(?i)\.(md|markdown)$`)
)

// ExtractTitle finds a human-readable title in the body: the first
// level-1 heading wins, the first level-2 heading is the fallback.
// Returns "" when neither exists; the caller supplies a default.
func ExtractTitle(content string) string {
	if m := h1Pattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := h2Pattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
