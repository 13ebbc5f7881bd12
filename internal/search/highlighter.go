package search

import (
	"strings"

	"github.com/hyperjump/scholar/internal/keyword"
)

// Highlight returns a window of at most maxLen runes of content, starting a
// little before the first query term it contains. Cut ends are marked with
// "...". With maxLen <= 0 content is returned unchanged.
func Highlight(content, query string, maxLen int) string {
	runes := []rune(content)
	if maxLen <= 0 || len(runes) <= maxLen {
		return content
	}
	start := 0
	for _, term := range keyword.Tokenize(query) {
		if i := strings.Index(content, term); i >= 0 {
			start = len([]rune(content[:i]))
			break
		}
	}
	start = max(0, start-maxLen/4)
	start = min(start, len(runes)-maxLen)
	out := string(runes[start : start+maxLen])
	if start > 0 {
		out = "..." + out
	}
	if start+maxLen < len(runes) {
		out += "..."
	}
	return out
}
