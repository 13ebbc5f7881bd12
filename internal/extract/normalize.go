package extract

import (
	"regexp"
	"strings"
)

var (
	// citationMarker matches numeric bracketed references such as [12],
	// together with the whitespace before them so "need [3]." becomes "need.".
	citationMarker = regexp.MustCompile(`\s*\[\p{Nd}+\]`)
	// whitespaceRun matches any run of Unicode whitespace.
	whitespaceRun = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
)

// Normalize removes citation markers, collapses whitespace runs to a single
// space and trims the result. It is total and idempotent: removal is repeated
// until no marker remains, so nested forms like "[[1]2]" are fully stripped.
func Normalize(text string) string {
	for citationMarker.MatchString(text) {
		text = citationMarker.ReplaceAllString(text, "")
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
