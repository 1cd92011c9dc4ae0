package resolver

import (
	"regexp"
	"strings"
)

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	allowedPattern       = regexp.MustCompile(`[^A-Za-z0-9 _-]+`)
	spacePattern         = regexp.MustCompile(`\s+`)
)

// Normalize reduces an artist or title to a comparable form: parenthetical
// qualifiers like "(Remastered 2011)" or "[Live]" are dropped, everything
// outside letters, digits, spaces, underscores and hyphens is removed, runs
// of whitespace collapse to one space, and the result is lowercased.
func Normalize(s string) string {
	s = parentheticalPattern.ReplaceAllString(s, " ")
	s = allowedPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
