package utils

import (
	"strings"
	"unicode"
)

const maxTextLength = 50000

// CleanToValidUTF8 strips invalid UTF-8 sequences and NUL bytes from a string.
func CleanToValidUTF8(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

// SafeText cleans a string for storage: valid UTF-8, trimmed, capped to a
// length Postgres text columns and LLM prompts can comfortably carry.
func SafeText(s string) string {
	s = CleanToValidUTF8(s)
	s = strings.TrimSpace(s)
	if len(s) > maxTextLength {
		s = s[:maxTextLength]
	}
	return s
}

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// ContainsString reports whether the slice contains the given string.
func ContainsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
