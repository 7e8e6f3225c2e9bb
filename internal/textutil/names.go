package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// StripWhitespace removes every Unicode whitespace rune from value.
func StripWhitespace(value string) string {
	if value == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

// CompactName converts a file name to NFC and strips all whitespace so that
// "CS 246 A1.pdf" and a decomposed HFS+ name compare equal to their composed,
// compacted forms.
func CompactName(name string) string {
	return StripWhitespace(norm.NFC.String(name))
}

// CourseCode canonicalizes a course code: NFC, whitespace removed, uppercase.
func CourseCode(code string) string {
	return strings.ToUpper(CompactName(code))
}
