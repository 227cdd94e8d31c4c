package util

import "strings"

const fence = "```"

// StripCodeFences removes one leading markdown fence (with an optional
// language tag such as "json") and one trailing fence, then trims the rest.
// Text without fences comes back trimmed and otherwise untouched.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		s = strings.TrimLeftFunc(s, isFenceTagRune)
		s = strings.TrimLeft(s, " \t")
		s = strings.TrimPrefix(s, "\r")
		s = strings.TrimPrefix(s, "\n")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), fence)
	return strings.TrimSpace(s)
}

func isFenceTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '+', r == '.':
		return true
	}
	return false
}
