package utils

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify lowercases s and replaces every whitespace run with a hyphen.
// "Alumni  Network" becomes "alumni-network". No other characters are touched,
// so two labels differing only in spacing map to the same key.
func Slugify(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}
