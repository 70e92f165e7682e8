package textutil

import (
	"strings"
)

// CollapseSpace replaces every run of whitespace with a single space and trims the ends.
// Whitespace is unicode whitespace, so the no-break spaces left by &nbsp; collapse too.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FirstNonEmpty returns the first candidate that is non-empty after CollapseSpace.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		c = CollapseSpace(c)
		if c != "" {
			return c
		}
	}
	return ""
}
