package record

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Fold normalizes a tag name for case-insensitive comparison:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func Fold(s string) string {
	// Trim leading/trailing whitespace
	s = strings.TrimSpace(s)

	// Lowercase
	s = strings.ToLower(s)

	// Collapse internal whitespace to single spaces
	s = whitespaceRegex.ReplaceAllString(s, " ")

	return s
}
